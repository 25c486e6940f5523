// Package parser extracts symbols and imports from Python, JavaScript,
// TypeScript, and Go sources using tree-sitter grammars.
//
// # Basic Usage
//
//	p := parser.New()
//	result, err := p.Parse(ctx, source, "api/handlers.py")
//	if err != nil {
//	    return err
//	}
//	symbols := parser.Normalize("api/handlers.py", result.Language, "api", result.Symbols)
//
// # Design
//
// Dispatch is extension-based via DetectLanguage; each language has a
// dedicated extraction walker over its grammar rather than a shared virtual
// hierarchy. The walkers emit RawSymbol values which Normalize converts to
// canonical symbols with generated IDs.
//
// Definitions reached through more than one path (decorator wrappers, export
// statements) are de-duplicated by byte span, never by AST node identity,
// since identity is not stable across repeated parses.
//
// # Error Handling
//
// Tree-sitter recovers from syntax errors, so malformed files still yield
// whatever definitions are locally parseable. Empty source yields an empty
// result; only unknown extensions and oversized files fail outright.
package parser
