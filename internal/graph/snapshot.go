package graph

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Snapshot is the serializable form of the graph. It round-trips
// losslessly: nodes, edges, and edge metadata all survive Marshal/Restore,
// which lets a persisted snapshot stand in for re-parsing the codebase at
// startup.
type Snapshot struct {
	Nodes map[string]NodeMeta `json:"nodes"`
	Edges []Edge              `json:"edges"`
}

// Snapshot captures the current graph state.
func (g *Graph) Snapshot() *Snapshot {
	snap := &Snapshot{
		Nodes: make(map[string]NodeMeta, len(g.nodes)),
		Edges: make([]Edge, 0, g.EdgeCount()),
	}
	for file, meta := range g.nodes {
		snap.Nodes[file] = meta
	}
	for _, file := range g.sortedFiles() {
		for _, e := range g.out[file] {
			snap.Edges = append(snap.Edges, *e)
		}
	}
	sort.SliceStable(snap.Edges, func(i, j int) bool {
		if snap.Edges[i].SourceFile != snap.Edges[j].SourceFile {
			return snap.Edges[i].SourceFile < snap.Edges[j].SourceFile
		}
		return snap.Edges[i].TargetFile < snap.Edges[j].TargetFile
	})
	return snap
}

// Marshal serializes the snapshot as JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Restore rebuilds a graph from serialized snapshot bytes, replacing any
// existing content.
func Restore(data []byte) (*Graph, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("restore graph snapshot: %w", err)
	}

	g := New()
	for file, meta := range snap.Nodes {
		g.nodes[file] = meta
	}
	for i := range snap.Edges {
		e := snap.Edges[i]
		g.insert(&e)
	}
	return g, nil
}
