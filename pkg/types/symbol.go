package types

import (
	"fmt"
	"strings"
)

// SymbolKind represents the canonical kind of a code symbol. The per-language
// parsers map their grammar-specific constructs onto this closed set.
type SymbolKind string

const (
	KindClass     SymbolKind = "class"
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindInterface SymbolKind = "interface"
	KindType      SymbolKind = "type"
	KindEnum      SymbolKind = "enum"
	KindVariable  SymbolKind = "variable"
)

// Language identifies a supported source language.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangGo         Language = "go"
)

// Symbol is a canonical code symbol normalized from per-language parser
// output. Symbols are created and replaced wholesale each time their file
// is indexed.
type Symbol struct {
	// Identification
	ID       string
	FilePath string
	Name     string
	Kind     SymbolKind
	Language Language

	// Optional grouping
	ServiceName string

	// Location (1-indexed, inclusive)
	LineStart int
	LineEnd   int

	// Content
	Signature string
	Docstring string

	// Visibility
	IsExported bool

	// ParentSymbol is the enclosing type's name (not its ID) for nested
	// definitions such as methods.
	ParentSymbol string

	// ChunkID back-links the symbol to its semantic chunk once indexed.
	ChunkID string
}

// SymbolID builds the canonical symbol ID. The base form is "file::name";
// a parent name is folded in as "file::parent.name" so that same-named
// methods on different types stay distinct.
func SymbolID(filePath, parent, name string) string {
	if parent != "" {
		return filePath + "::" + parent + "." + name
	}
	return filePath + "::" + name
}

// DisambiguateID appends the start line to an ID that still collides after
// parent qualification (e.g. duplicate declarations in one file). IDs must
// stay stable across re-parses, which line numbers are.
func DisambiguateID(id string, lineStart int) string {
	return fmt.Sprintf("%s#%d", id, lineStart)
}

// ValidateKind checks if the symbol kind is valid.
func (s *Symbol) ValidateKind() error {
	switch s.Kind {
	case KindClass, KindFunction, KindMethod, KindInterface, KindType, KindEnum, KindVariable:
		return nil
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidSymbol, s.Kind)
	}
}

// Validate performs comprehensive validation of the symbol.
func (s *Symbol) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSymbol)
	}
	if s.FilePath == "" {
		return fmt.Errorf("%w: file path is required", ErrInvalidSymbol)
	}
	if err := s.ValidateKind(); err != nil {
		return err
	}
	if s.LineStart <= 0 || s.LineEnd <= 0 {
		return fmt.Errorf("%w: line numbers must be positive", ErrInvalidSymbol)
	}
	if s.LineStart > s.LineEnd {
		return fmt.Errorf("%w: line start %d after line end %d", ErrInvalidSymbol, s.LineStart, s.LineEnd)
	}
	return nil
}

// QualifiedName returns "parent.name" for nested symbols, "name" otherwise.
func (s *Symbol) QualifiedName() string {
	if s.ParentSymbol != "" {
		return s.ParentSymbol + "." + s.Name
	}
	return s.Name
}

// NewSymbol constructs a validated symbol with a generated ID.
func NewSymbol(filePath, name string, kind SymbolKind, lang Language, lineStart, lineEnd int) (*Symbol, error) {
	s := &Symbol{
		ID:        SymbolID(filePath, "", name),
		FilePath:  filePath,
		Name:      name,
		Kind:      kind,
		Language:  lang,
		LineStart: lineStart,
		LineEnd:   lineEnd,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// HasPrefix reports whether the symbol name starts with any of the given
// prefixes, case-insensitively. Used by the dead-code confidence rules.
func (s *Symbol) HasPrefix(prefixes ...string) bool {
	lower := strings.ToLower(s.Name)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
