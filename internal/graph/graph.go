package graph

import (
	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// NodeMeta carries optional metadata attached to a file node.
type NodeMeta struct {
	Language    string `json:"language,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
}

// Edge is one directed dependency between two file nodes, with the symbol
// endpoints and relation that produced it.
type Edge struct {
	SourceFile     string         `json:"source_file"`
	TargetFile     string         `json:"target_file"`
	Relation       types.Relation `json:"relation"`
	SourceSymbolID string         `json:"source_symbol_id,omitempty"`
	TargetSymbolID string         `json:"target_symbol_id,omitempty"`
	Line           int            `json:"line,omitempty"`
}

// Graph is the in-process dependency graph: directed, file-path nodes,
// edges annotated with relation metadata.
//
// Graph is NOT safe for concurrent mutation. AddFile deletes and re-inserts
// edges non-atomically, so concurrent indexing of even different files must
// be serialized by the caller; the orchestrator holds a per-file lock and a
// graph mutex for exactly this reason.
type Graph struct {
	nodes map[string]NodeMeta
	out   map[string][]*Edge // source file -> outgoing edges
	in    map[string][]*Edge // target file -> incoming edges
}

// New creates an empty dependency graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]NodeMeta),
		out:   make(map[string][]*Edge),
		in:    make(map[string][]*Edge),
	}
}

// AddFile replaces the edges contributed by file (its outgoing set) with
// the given set, then attaches node metadata. This is the idempotency
// guarantee for re-indexing: two calls with different imports leave exactly
// the second call's edges, no accumulation. Edges other files recorded
// toward this one are untouched, matching the relational ReplaceEdges.
func (g *Graph) AddFile(file string, meta NodeMeta, edges []Edge) {
	g.removeOutgoing(file)
	g.nodes[file] = meta
	for i := range edges {
		e := edges[i]
		g.insert(&e)
	}
}

// insert adds one edge, creating endpoint nodes as needed. Every file that
// appears as an edge endpoint has a node, including bare external packages.
func (g *Graph) insert(e *Edge) {
	if _, ok := g.nodes[e.SourceFile]; !ok {
		g.nodes[e.SourceFile] = NodeMeta{}
	}
	if _, ok := g.nodes[e.TargetFile]; !ok {
		g.nodes[e.TargetFile] = NodeMeta{}
	}
	g.out[e.SourceFile] = append(g.out[e.SourceFile], e)
	g.in[e.TargetFile] = append(g.in[e.TargetFile], e)
}

// removeOutgoing drops the edges file contributed as a source.
func (g *Graph) removeOutgoing(file string) {
	for _, e := range g.out[file] {
		g.in[e.TargetFile] = dropEdge(g.in[e.TargetFile], e)
	}
	delete(g.out, file)
}

// removeIncident drops every edge touching file, in both directions.
func (g *Graph) removeIncident(file string) {
	g.removeOutgoing(file)

	for _, e := range g.in[file] {
		g.out[e.SourceFile] = dropEdge(g.out[e.SourceFile], e)
	}
	delete(g.in, file)
}

func dropEdge(edges []*Edge, target *Edge) []*Edge {
	kept := edges[:0]
	for _, e := range edges {
		if e != target {
			kept = append(kept, e)
		}
	}
	return kept
}

// RemoveFile deletes a node and every edge incident to it.
func (g *Graph) RemoveFile(file string) {
	g.removeIncident(file)
	delete(g.nodes, file)
}

// HasNode reports whether file is present in the graph.
func (g *Graph) HasNode(file string) bool {
	_, ok := g.nodes[file]
	return ok
}

// Node returns the metadata attached to a file node.
func (g *Graph) Node(file string) (NodeMeta, bool) {
	meta, ok := g.nodes[file]
	return meta, ok
}

// NodeCount returns the number of file nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.out {
		n += len(edges)
	}
	return n
}

// Successors returns the direct dependency targets of file, in insertion
// order, de-duplicated.
func (g *Graph) Successors(file string) []string {
	return neighborFiles(g.out[file], func(e *Edge) string { return e.TargetFile })
}

// Predecessors returns the files that directly depend on file.
func (g *Graph) Predecessors(file string) []string {
	return neighborFiles(g.in[file], func(e *Edge) string { return e.SourceFile })
}

// OutEdges returns the outgoing edges of file.
func (g *Graph) OutEdges(file string) []*Edge { return g.out[file] }

// Edges returns all edges in the graph.
func (g *Graph) Edges() []*Edge {
	var all []*Edge
	for _, edges := range g.out {
		all = append(all, edges...)
	}
	return all
}

// Files returns all node paths.
func (g *Graph) Files() []string {
	files := make([]string, 0, len(g.nodes))
	for f := range g.nodes {
		files = append(files, f)
	}
	return files
}

func neighborFiles(edges []*Edge, pick func(*Edge) string) []string {
	seen := make(map[string]bool, len(edges))
	var files []string
	for _, e := range edges {
		f := pick(e)
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}
	return files
}

// EdgesFromReferences builds import edges for one source file from its
// resolved import references.
func EdgesFromReferences(refs []types.ImportReference) []Edge {
	edges := make([]Edge, 0, len(refs))
	for _, ref := range refs {
		if ref.TargetFile == "" || ref.TargetFile == ref.SourceFile {
			continue
		}
		edges = append(edges, Edge{
			SourceFile: ref.SourceFile,
			TargetFile: ref.TargetFile,
			Relation:   types.RelationImports,
			Line:       ref.Line,
		})
	}
	return edges
}
