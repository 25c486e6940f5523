package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds a.py -> b.py -> c.py
func chainGraph() *Graph {
	g := New()
	g.AddFile("a.py", NodeMeta{}, []Edge{importEdge("a.py", "b.py")})
	g.AddFile("b.py", NodeMeta{}, []Edge{importEdge("b.py", "c.py")})
	g.AddFile("c.py", NodeMeta{}, nil)
	return g
}

func TestAnalyzeAcyclicChain(t *testing.T) {
	analysis := chainGraph().Analyze()

	assert.Equal(t, 3, analysis.NodeCount)
	assert.Equal(t, 2, analysis.EdgeCount)
	assert.True(t, analysis.IsDAG)
	assert.Empty(t, analysis.Cycles)
	assert.Equal(t, 1, analysis.ComponentCount)
	assert.Equal(t, []string{"a.py", "b.py", "c.py"}, analysis.BuildOrder)
}

func TestBuildOrderParallelEdges(t *testing.T) {
	// Two import statements of the same module produce two a->b edges.
	// The ordering must still visit every node.
	g := New()
	g.AddFile("a.js", NodeMeta{}, []Edge{
		{SourceFile: "a.js", TargetFile: "b.js", Line: 1},
		{SourceFile: "a.js", TargetFile: "b.js", Line: 7},
	})
	g.AddFile("b.js", NodeMeta{}, []Edge{importEdge("b.js", "c.js")})
	g.AddFile("c.js", NodeMeta{}, nil)

	analysis := g.Analyze()
	assert.True(t, analysis.IsDAG)
	assert.Equal(t, []string{"a.js", "b.js", "c.js"}, analysis.BuildOrder)
}

func TestAnalyzeCyclicGraph(t *testing.T) {
	g := New()
	g.AddFile("a.py", NodeMeta{}, []Edge{importEdge("a.py", "b.py")})
	g.AddFile("b.py", NodeMeta{}, []Edge{importEdge("b.py", "a.py")})

	analysis := g.Analyze()
	assert.False(t, analysis.IsDAG)
	require.Len(t, analysis.Cycles, 1)
	assert.Equal(t, []string{"a.py", "b.py"}, analysis.Cycles[0])
	assert.Nil(t, analysis.BuildOrder)
}

func TestCycleCanonicalization(t *testing.T) {
	// The same loop entered from different nodes reports once, rotated
	// to its smallest member.
	g := New()
	g.AddFile("m.py", NodeMeta{}, []Edge{importEdge("m.py", "z.py")})
	g.AddFile("z.py", NodeMeta{}, []Edge{importEdge("z.py", "b.py")})
	g.AddFile("b.py", NodeMeta{}, []Edge{importEdge("b.py", "m.py")})

	cycles := g.findCycles(maxCapturedCycles)
	require.Len(t, cycles, 1)
	assert.Equal(t, "b.py", cycles[0][0])
}

func TestCycleCaptureBound(t *testing.T) {
	g := New()
	for i := 0; i < 30; i++ {
		a := fmt.Sprintf("a%02d.py", i)
		b := fmt.Sprintf("b%02d.py", i)
		g.AddFile(a, NodeMeta{}, []Edge{importEdge(a, b)})
		g.AddFile(b, NodeMeta{}, []Edge{importEdge(b, a)})
	}

	analysis := g.Analyze()
	assert.False(t, analysis.IsDAG)
	assert.Len(t, analysis.Cycles, maxCapturedCycles)
}

func TestCentralityRanking(t *testing.T) {
	// Everything depends on core.py transitively.
	g := New()
	g.AddFile("app.py", NodeMeta{}, []Edge{importEdge("app.py", "lib.py")})
	g.AddFile("cli.py", NodeMeta{}, []Edge{importEdge("cli.py", "lib.py")})
	g.AddFile("lib.py", NodeMeta{}, []Edge{importEdge("lib.py", "core.py")})
	g.AddFile("core.py", NodeMeta{}, nil)

	analysis := g.Analyze()
	require.NotEmpty(t, analysis.TopFiles)
	assert.Equal(t, "core.py", analysis.TopFiles[0].FilePath)
	assert.Equal(t, 3.0, analysis.TopFiles[0].Score)
}

func TestWeakComponents(t *testing.T) {
	g := New()
	g.AddFile("a.py", NodeMeta{}, []Edge{importEdge("a.py", "b.py")})
	g.AddFile("x.py", NodeMeta{}, []Edge{importEdge("x.py", "y.py")})
	g.AddFile("lone.py", NodeMeta{}, nil)

	assert.Equal(t, 3, g.weakComponentCount())
}

func TestDependenciesDepth(t *testing.T) {
	g := chainGraph()

	assert.Equal(t, []string{"b.py"}, g.Dependencies("a.py", 1))
	assert.Equal(t, []string{"b.py", "c.py"}, g.Dependencies("a.py", 2))
}

func TestDependentsExcludeStart(t *testing.T) {
	g := chainGraph()

	deps := g.Dependents("c.py", 5)
	assert.Equal(t, []string{"b.py", "a.py"}, deps)
	assert.NotContains(t, deps, "c.py")
}

func TestWalkAbsentFile(t *testing.T) {
	g := chainGraph()
	assert.Equal(t, []string{}, g.Dependencies("missing.py", 3))
	assert.Equal(t, []string{}, g.Dependents("missing.py", 3))
	assert.Equal(t, []string{}, g.Impact("missing.py"))
}

func TestWalkCyclicGraphTerminates(t *testing.T) {
	g := New()
	g.AddFile("a.py", NodeMeta{}, []Edge{importEdge("a.py", "b.py")})
	g.AddFile("b.py", NodeMeta{}, []Edge{importEdge("b.py", "a.py")})

	deps := g.Dependencies("a.py", 100)
	assert.Equal(t, []string{"b.py"}, deps)
}

func TestImpactUnbounded(t *testing.T) {
	g := chainGraph()
	assert.Equal(t, []string{"b.py", "a.py"}, g.Impact("c.py"))
}
