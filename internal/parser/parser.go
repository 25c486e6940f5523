package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// MaxFileSize is the largest source file the parsers will accept.
const MaxFileSize = 10 * 1024 * 1024

// extensions maps file extensions to language tags.
var extensions = map[string]types.Language{
	".py":  types.LangPython,
	".js":  types.LangJavaScript,
	".mjs": types.LangJavaScript,
	".cjs": types.LangJavaScript,
	".jsx": types.LangJavaScript,
	".ts":  types.LangTypeScript,
	".tsx": types.LangTypeScript,
	".mts": types.LangTypeScript,
	".cts": types.LangTypeScript,
	".go":  types.LangGo,
}

// DetectLanguage maps a file path to its language tag by extension.
// Unknown extensions return ErrUnsupportedLanguage.
func DetectLanguage(path string) (types.Language, error) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrUnsupportedLanguage, ext)
	}
	return lang, nil
}

// Parser extracts symbols and imports from source files of the supported
// languages. Dispatch is a closed switch on the language tag; each language
// has a dedicated extraction walker over its tree-sitter grammar.
//
// A Parser is safe for concurrent use: each Parse call builds its own
// tree-sitter parser instance.
type Parser struct{}

// New creates a new Parser.
func New() *Parser {
	return &Parser{}
}

// Parse extracts symbols and imports from source. Empty source yields an
// empty result. Malformed source yields whatever definitions are locally
// recoverable; tree-sitter error recovery means extraction is best-effort,
// never all-or-nothing.
func (p *Parser) Parse(ctx context.Context, source []byte, path string) (*types.ParseResult, error) {
	lang, err := DetectLanguage(path)
	if err != nil {
		return nil, err
	}
	if len(source) > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", types.ErrFileTooLarge, len(source))
	}

	result := &types.ParseResult{Language: lang}
	if len(strings.TrimSpace(string(source))) == 0 {
		return result, nil
	}

	sp := sitter.NewParser()
	switch lang {
	case types.LangPython:
		sp.SetLanguage(python.GetLanguage())
	case types.LangJavaScript:
		sp.SetLanguage(javascript.GetLanguage())
	case types.LangTypeScript:
		sp.SetLanguage(typescript.GetLanguage())
	case types.LangGo:
		sp.SetLanguage(golang.GetLanguage())
	}

	tree, err := sp.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		result.AddError(path, int(root.StartPoint().Row)+1, "syntax errors present, extraction is partial")
	}

	w := &walker{source: source, seen: make(map[spanKey]bool)}
	switch lang {
	case types.LangPython:
		w.walkPython(root, "")
	case types.LangJavaScript:
		w.walkScript(root, "", false)
	case types.LangTypeScript:
		w.walkScript(root, "", true)
	case types.LangGo:
		w.walkGo(root)
	}

	result.Symbols = w.symbols
	result.Imports = w.imports
	return result, nil
}

// spanKey de-duplicates definitions by byte span. Decorated or
// export-wrapped definitions can be visited more than once; node identity
// is not stable across parses, byte offsets are.
type spanKey struct {
	start uint32
	end   uint32
}

// walker accumulates raw symbols and imports during an extraction pass.
type walker struct {
	source  []byte
	symbols []types.RawSymbol
	imports []types.RawImport
	seen    map[spanKey]bool
}

// add records a raw symbol unless its byte span was already emitted.
func (w *walker) add(node *sitter.Node, sym types.RawSymbol) {
	key := spanKey{node.StartByte(), node.EndByte()}
	if w.seen[key] {
		return
	}
	w.seen[key] = true
	sym.LineStart = int(node.StartPoint().Row) + 1
	sym.LineEnd = int(node.EndPoint().Row) + 1
	sym.StartByte = node.StartByte()
	sym.EndByte = node.EndByte()
	w.symbols = append(w.symbols, sym)
}

// content returns the source text of a node.
func (w *walker) content(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return node.Content(w.source)
}

// signature returns the first line of a node's text, as a best-effort
// single-line signature.
func (w *walker) signature(node *sitter.Node) string {
	text := w.content(node)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "{")
	return strings.TrimSpace(text)
}

// leadingComment collects the contiguous comment block immediately above a
// node. Works for //, /* */ and # comment conventions alike since it keys
// off the grammar's "comment" node type.
func (w *walker) leadingComment(node *sitter.Node) string {
	// Export wrappers and decorators sit between the comment and the
	// definition; climb to the outermost enclosing wrapper first.
	for parent := node.Parent(); parent != nil; parent = node.Parent() {
		t := parent.Type()
		if t == "export_statement" || t == "decorated_definition" || t == "ambient_declaration" {
			node = parent
			continue
		}
		break
	}

	var lines []string
	prev := node.PrevNamedSibling()
	lastRow := node.StartPoint().Row
	for prev != nil && prev.Type() == "comment" {
		// Only comments directly adjacent to the definition count; a
		// blank line between breaks the block.
		if prev.EndPoint().Row+1 < lastRow {
			break
		}
		lines = append([]string{cleanComment(w.content(prev))}, lines...)
		lastRow = prev.StartPoint().Row
		prev = prev.PrevNamedSibling()
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// cleanComment strips comment markers from a single comment node's text.
func cleanComment(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "///"):
		text = strings.TrimPrefix(text, "///")
	case strings.HasPrefix(text, "//"):
		text = strings.TrimPrefix(text, "//")
	case strings.HasPrefix(text, "#"):
		text = strings.TrimPrefix(text, "#")
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
		var cleaned []string
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			line = strings.TrimPrefix(line, "*")
			cleaned = append(cleaned, strings.TrimSpace(line))
		}
		text = strings.Join(cleaned, "\n")
	}
	return strings.TrimSpace(text)
}

// stringLiteral unquotes a string/interpreted_string_literal node.
func (w *walker) stringLiteral(node *sitter.Node) string {
	text := w.content(node)
	text = strings.Trim(text, "\"'`")
	return text
}
