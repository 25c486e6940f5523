package deadcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhollis/codeatlas-mcp/internal/graph"
	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

func symbol(name, file string, kind types.SymbolKind, exported bool) *types.Symbol {
	return &types.Symbol{
		ID:         types.SymbolID(file, "", name),
		FilePath:   file,
		Name:       name,
		Kind:       kind,
		Language:   types.LangPython,
		LineStart:  1,
		LineEnd:    5,
		IsExported: exported,
	}
}

func detect(t *testing.T, syms ...*types.Symbol) []types.DeadCodeEntry {
	t.Helper()
	return New().Detect(syms, map[string]bool{}, graph.New())
}

func TestNonExportedSkipped(t *testing.T) {
	entries := detect(t, symbol("_helper", "util.py", types.KindFunction, false))
	assert.Empty(t, entries)
}

func TestEntryPointsSkipped(t *testing.T) {
	tests := []struct {
		name string
		sym  *types.Symbol
	}{
		{"main function", symbol("main", "cli.py", types.KindFunction, true)},
		{"python test", symbol("test_login", "auth.py", types.KindFunction, true)},
		{"go test", symbol("TestLogin", "auth.go", types.KindFunction, true)},
		{"benchmark", symbol("BenchmarkParse", "p.go", types.KindFunction, true)},
		{"dunder", symbol("__repr__", "model.py", types.KindMethod, true)},
		{"lifecycle", symbol("componentDidMount", "view.tsx", types.KindMethod, true)},
		{"entry file", symbol("bootstrap", "index.ts", types.KindFunction, true)},
		{"conftest fixture", symbol("db_session", "conftest.py", types.KindFunction, true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, detect(t, tt.sym))
		})
	}
}

func TestReferencedSymbolsSkipped(t *testing.T) {
	sym := symbol("Compute", "math.py", types.KindFunction, true)
	refs := map[string]bool{sym.ID: true}

	entries := New().Detect([]*types.Symbol{sym}, refs, graph.New())
	assert.Empty(t, entries)
}

func TestConfidenceLadder(t *testing.T) {
	tests := []struct {
		name string
		sym  *types.Symbol
		want types.Confidence
	}{
		{"handler prefix", symbol("handle_request", "srv.py", types.KindFunction, true), types.ConfidenceLow},
		{"camelCase handler", symbol("onClick", "ui.ts", types.KindFunction, true), types.ConfidenceLow},
		{"rest verb function", symbol("get_user", "api.py", types.KindFunction, true), types.ConfidenceLow},
		{"method", symbol("Save", "repo.go", types.KindMethod, true), types.ConfidenceMedium},
		{"interface", symbol("Store", "store.go", types.KindInterface, true), types.ConfidenceMedium},
		{"type alias", symbol("UserID", "ids.ts", types.KindType, true), types.ConfidenceMedium},
		{"plain function", symbol("compute_x", "math.py", types.KindFunction, true), types.ConfidenceHigh},
		{"class", symbol("Invoice", "billing.py", types.KindClass, true), types.ConfidenceHigh},
		{"prefix needs boundary", symbol("download", "io.py", types.KindFunction, true), types.ConfidenceHigh},
		{"variable", symbol("DEFAULT_TIMEOUT", "cfg.py", types.KindVariable, true), types.ConfidenceHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := detect(t, tt.sym)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, entries[0].Confidence)
		})
	}
}

func TestRestVerbOnlyAppliesToTopLevelFunctions(t *testing.T) {
	method := symbol("get_user", "repo.py", types.KindMethod, true)
	method.ParentSymbol = "UserRepo"

	entries := detect(t, method)
	require.Len(t, entries, 1)
	assert.Equal(t, types.ConfidenceMedium, entries[0].Confidence)
}

func TestNilReferencesDerivedFromGraph(t *testing.T) {
	sym := symbol("Compute", "math.py", types.KindFunction, true)

	g := graph.New()
	g.AddFile("app.py", graph.NodeMeta{}, []graph.Edge{{
		SourceFile:     "app.py",
		TargetFile:     "math.py",
		Relation:       types.RelationCalls,
		TargetSymbolID: sym.ID,
	}})

	entries := New().Detect([]*types.Symbol{sym}, nil, g)
	assert.Empty(t, entries)
}

func TestHasWordPrefix(t *testing.T) {
	assert.True(t, hasWordPrefix("handle_request", "handle"))
	assert.True(t, hasWordPrefix("onClick", "on"))
	assert.False(t, hasWordPrefix("online", "on"))
	assert.False(t, hasWordPrefix("on", "on"))
	assert.False(t, hasWordPrefix("on_", "on"))
}
