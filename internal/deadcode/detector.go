package deadcode

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dhollis/codeatlas-mcp/internal/graph"
	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// entryPointNames is the fixed cross-language lifecycle-method set:
// constructors, test setup/teardown hooks, and framework lifecycle
// callbacks are reachable without any in-index reference.
var entryPointNames = map[string]bool{
	"main":              true,
	"init":              true,
	"constructor":       true,
	"__init__":          true,
	"setup":             true,
	"teardown":          true,
	"setUp":             true,
	"tearDown":          true,
	"setUpClass":        true,
	"tearDownClass":     true,
	"render":            true,
	"componentDidMount": true,
	"ngOnInit":          true,
}

// entryPointFiles are package entry-point files whose exports are wired up
// by convention rather than by import.
var entryPointFiles = map[string]bool{
	"main.go":     true,
	"main.py":     true,
	"app.py":      true,
	"__init__.py": true,
	"index.js":    true,
	"index.ts":    true,
	"setup.py":    true,
	"conftest.py": true,
}

var (
	// testNamePattern matches test-function naming conventions across the
	// supported languages.
	testNamePattern = regexp.MustCompile(`^(Test|Benchmark|Fuzz|Example)[A-Z_]|^test_`)
	// dunderPattern matches Python special methods, which are invoked by
	// the runtime.
	dunderPattern = regexp.MustCompile(`^__\w+__$`)
)

// dynamicPrefixes are naming conventions that suggest dynamic dispatch
// (event handlers, queue processors); findings on them are low confidence.
// Bare prefixes only count at a camelCase boundary ("onClick", not
// "online").
var dynamicPrefixes = []string{"on", "handle", "process", "do"}

// restVerbPrefixes flag top-level functions likely routed by a web
// framework by verb name.
var restVerbPrefixes = []string{"get", "post", "put", "delete", "patch", "head", "options"}

// Detector classifies unreferenced exported symbols with a confidence
// heuristic. Read-only: it never mutates the graph or symbol set and never
// errors on malformed input.
type Detector struct{}

// New creates a Detector.
func New() *Detector {
	return &Detector{}
}

// Detect flags dead symbols. references is the set of referenced symbol
// IDs; pass nil to derive it from the graph's edge metadata. Exclusion
// rules run strictly before confidence scoring: non-exported symbols,
// entry points, and referenced symbols are never reported.
func (d *Detector) Detect(symbols []*types.Symbol, references map[string]bool, g *graph.Graph) []types.DeadCodeEntry {
	if references == nil {
		references = ReferencesFromGraph(g)
	}

	var entries []types.DeadCodeEntry
	for _, sym := range symbols {
		if sym == nil || !sym.IsExported {
			continue
		}
		if isEntryPoint(sym) {
			continue
		}
		if references[sym.ID] {
			continue
		}
		entries = append(entries, types.DeadCodeEntry{
			SymbolName:  sym.Name,
			FilePath:    sym.FilePath,
			Kind:        sym.Kind,
			Line:        sym.LineStart,
			ServiceName: sym.ServiceName,
			Confidence:  confidence(sym),
		})
	}
	return entries
}

// ReferencesFromGraph derives the referenced-symbol set by scanning edge
// metadata for source and target symbol IDs.
func ReferencesFromGraph(g *graph.Graph) map[string]bool {
	refs := make(map[string]bool)
	if g == nil {
		return refs
	}
	for _, e := range g.Edges() {
		if e.SourceSymbolID != "" {
			refs[e.SourceSymbolID] = true
		}
		if e.TargetSymbolID != "" {
			refs[e.TargetSymbolID] = true
		}
	}
	return refs
}

// isEntryPoint reports whether a symbol is reachable by convention: the
// language's primary entry identifier, test naming, special methods,
// lifecycle callbacks, or residence in a package entry-point file.
func isEntryPoint(sym *types.Symbol) bool {
	if entryPointNames[sym.Name] {
		return true
	}
	if testNamePattern.MatchString(sym.Name) {
		return true
	}
	if dunderPattern.MatchString(sym.Name) {
		return true
	}
	return entryPointFiles[filepath.Base(sym.FilePath)]
}

// confidence applies the heuristic ladder once exclusions have passed:
// dynamic-dispatch-prone names and REST-verb-shaped top-level functions are
// low; methods, interfaces, and types may be used polymorphically or in
// type position only, so medium; everything else is high.
func confidence(sym *types.Symbol) types.Confidence {
	for _, p := range dynamicPrefixes {
		if hasWordPrefix(sym.Name, p) {
			return types.ConfidenceLow
		}
	}
	if sym.Kind == types.KindFunction && sym.ParentSymbol == "" {
		for _, verb := range restVerbPrefixes {
			if hasWordPrefix(sym.Name, verb) {
				return types.ConfidenceLow
			}
		}
	}
	switch sym.Kind {
	case types.KindMethod, types.KindInterface, types.KindType:
		return types.ConfidenceMedium
	}
	return types.ConfidenceHigh
}

// hasWordPrefix reports whether name starts with prefix at a word
// boundary: either "prefix_rest" or a camelCase "prefixRest". The prefix
// alone does not count.
func hasWordPrefix(name, prefix string) bool {
	lower := strings.ToLower(name)
	if len(lower) <= len(prefix) || !strings.HasPrefix(lower, prefix) {
		return false
	}
	rest := name[len(prefix):]
	if rest[0] == '_' {
		return len(rest) > 1
	}
	return rest[0] >= 'A' && rest[0] <= 'Z'
}
