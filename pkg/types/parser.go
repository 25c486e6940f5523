package types

// RawSymbol is the pre-normalization output of a language parser: grammar
// positions and language-local naming, before canonical IDs are assigned.
type RawSymbol struct {
	Name      string
	Kind      SymbolKind
	LineStart int
	LineEnd   int
	StartByte uint32
	EndByte   uint32
	Signature string
	Docstring string
	Exported  bool
	Parent    string
}

// RawImport is an import statement as seen by a parser, before resolution.
type RawImport struct {
	// Specifier is the literal import target ("./util", "os.path", "fmt").
	Specifier string
	// Names are the identifiers pulled in by the import, when the grammar
	// exposes them (from-imports, named ES imports).
	Names []string
	Line  int
	// Dots counts leading relative markers for Python from-imports.
	Dots int
}

// ParseResult is the output of parsing one source file.
type ParseResult struct {
	Language Language
	Symbols  []RawSymbol
	Imports  []RawImport

	// Errors are non-fatal parse diagnostics; extraction is best-effort and
	// partial results accompany them.
	Errors []ParseError
}

// ParseError is a recoverable diagnostic from a parser.
type ParseError struct {
	File    string
	Line    int
	Message string
}

// Error implements the error interface.
func (pe *ParseError) Error() string {
	return pe.Message
}

// HasErrors returns true if any parsing errors occurred.
func (pr *ParseResult) HasErrors() bool {
	return len(pr.Errors) > 0
}

// AddError appends a parse diagnostic to the result.
func (pr *ParseResult) AddError(file string, line int, msg string) {
	pr.Errors = append(pr.Errors, ParseError{File: file, Line: line, Message: msg})
}
