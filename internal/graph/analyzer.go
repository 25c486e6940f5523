package graph

import (
	"sort"
	"strings"

	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

const (
	// maxCapturedCycles bounds how many simple cycles Analyze reports.
	maxCapturedCycles = 20
	// topFileCount is the size of the centrality ranking.
	topFileCount = 10
)

// Analyze computes the read-only graph summary: counts, acyclicity, up to
// 20 captured cycles, the centrality top list, weak component count, and a
// topological build order. The build order is computed only after
// acyclicity is confirmed and stays nil for cyclic graphs.
func (g *Graph) Analyze() *types.GraphAnalysis {
	analysis := &types.GraphAnalysis{
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
	}

	cycles := g.findCycles(maxCapturedCycles)
	analysis.IsDAG = len(cycles) == 0
	analysis.Cycles = cycles
	analysis.TopFiles = g.rankByCentrality(topFileCount)
	analysis.ComponentCount = g.weakComponentCount()

	if analysis.IsDAG {
		analysis.BuildOrder = g.topologicalOrder()
	}

	return analysis
}

// findCycles captures up to limit distinct simple cycles using DFS with an
// on-stack marker. Cycles are canonicalized (rotated to their smallest
// node) so the same loop discovered from different entry points counts
// once.
func (g *Graph) findCycles(limit int) [][]string {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current DFS stack
		black = 2 // fully explored
	)

	color := make(map[string]int, len(g.nodes))
	var stack []string
	var cycles [][]string
	seen := make(map[string]bool)

	var visit func(node string)
	visit = func(node string) {
		if len(cycles) >= limit {
			return
		}
		color[node] = gray
		stack = append(stack, node)

		for _, next := range g.Successors(node) {
			switch color[next] {
			case white:
				visit(next)
			case gray:
				cycle := extractCycle(stack, next)
				key := strings.Join(cycle, "\x00")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			}
			if len(cycles) >= limit {
				break
			}
		}

		stack = stack[:len(stack)-1]
		color[node] = black
	}

	for _, node := range g.sortedFiles() {
		if color[node] == white {
			visit(node)
		}
		if len(cycles) >= limit {
			break
		}
	}
	return cycles
}

// extractCycle slices the DFS stack from the re-entered node and rotates it
// so the lexicographically smallest node leads.
func extractCycle(stack []string, entry string) []string {
	start := 0
	for i, node := range stack {
		if node == entry {
			start = i
			break
		}
	}
	cycle := append([]string(nil), stack[start:]...)

	smallest := 0
	for i, node := range cycle {
		if node < cycle[smallest] {
			smallest = i
		}
	}
	rotated := make([]string, 0, len(cycle))
	rotated = append(rotated, cycle[smallest:]...)
	rotated = append(rotated, cycle[:smallest]...)
	return rotated
}

// rankByCentrality scores each file by the number of files that
// transitively depend on it: the impact set size. Files the whole codebase
// rests on rank first.
func (g *Graph) rankByCentrality(limit int) []types.RankedFile {
	ranked := make([]types.RankedFile, 0, len(g.nodes))
	for _, file := range g.sortedFiles() {
		dependents := g.walk(file, len(g.nodes), g.Predecessors)
		ranked = append(ranked, types.RankedFile{
			FilePath: file,
			Score:    float64(len(dependents)),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// topologicalOrder returns a Kahn ordering where every edge's source
// precedes its target. Callers must have confirmed acyclicity first.
func (g *Graph) topologicalOrder() []string {
	inDegree := make(map[string]int, len(g.nodes))
	for file := range g.nodes {
		inDegree[file] = 0
	}
	for _, edges := range g.out {
		for _, e := range edges {
			inDegree[e.TargetFile]++
		}
	}

	var frontier []string
	for _, file := range g.sortedFiles() {
		if inDegree[file] == 0 {
			frontier = append(frontier, file)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(frontier) > 0 {
		node := frontier[0]
		frontier = frontier[1:]
		order = append(order, node)
		// Decrement per raw edge to balance the per-edge counts above;
		// parallel edges between the same pair would otherwise strand
		// their target at a positive in-degree.
		for _, e := range g.out[node] {
			inDegree[e.TargetFile]--
			if inDegree[e.TargetFile] == 0 {
				frontier = append(frontier, e.TargetFile)
			}
		}
	}
	return order
}

// weakComponentCount counts connected components ignoring edge direction.
func (g *Graph) weakComponentCount() int {
	visited := make(map[string]bool, len(g.nodes))
	count := 0
	for file := range g.nodes {
		if visited[file] {
			continue
		}
		count++
		queue := []string{file}
		visited[file] = true
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			for _, next := range g.Successors(node) {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
			for _, next := range g.Predecessors(node) {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	return count
}

// Dependencies returns the files file depends on, up to depth hops forward.
// Depth 1 is the direct successor list; deeper walks are breadth-first,
// exclude the start node, de-duplicate, and preserve discovery order.
// Absent files yield an empty result.
func (g *Graph) Dependencies(file string, depth int) []string {
	return g.walk(file, depth, g.Successors)
}

// Dependents returns the files that depend on file, up to depth hops over
// predecessors: "who breaks if this changes".
func (g *Graph) Dependents(file string, depth int) []string {
	return g.walk(file, depth, g.Predecessors)
}

// Impact returns every transitive dependent of file, unbounded depth.
func (g *Graph) Impact(file string) []string {
	return g.walk(file, len(g.nodes), g.Predecessors)
}

// walk is a bounded BFS over the given neighbor function.
func (g *Graph) walk(start string, depth int, neighbors func(string) []string) []string {
	if depth <= 0 || !g.HasNode(start) {
		return []string{}
	}

	visited := map[string]bool{start: true}
	result := []string{}
	frontier := []string{start}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, node := range frontier {
			for _, n := range neighbors(node) {
				if visited[n] {
					continue
				}
				visited[n] = true
				result = append(result, n)
				next = append(next, n)
			}
		}
		frontier = next
	}
	return result
}

// sortedFiles returns node paths in lexical order for deterministic
// traversal.
func (g *Graph) sortedFiles() []string {
	files := g.Files()
	sort.Strings(files)
	return files
}
