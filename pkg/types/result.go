package types

// IndexResult is the outcome of indexing one file. Indexed is true only when
// no step recorded an error; symbols and graph edges may still be fully
// persisted when Indexed is false, since the semantic step is best-effort
// and never rolls back durable writes.
type IndexResult struct {
	Indexed           bool     `json:"indexed"`
	SymbolsFound      int      `json:"symbols_found"`
	DependenciesFound int      `json:"dependencies_found"`
	Errors            []string `json:"errors"`
}

// AddError records a step failure and flips Indexed off.
func (r *IndexResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Indexed = false
}

// SearchResult is one semantic search hit. Score is 1-distance clamped to
// [0, 1]; results are returned strictly score-descending.
type SearchResult struct {
	ChunkID     string     `json:"chunk_id"`
	FilePath    string     `json:"file_path"`
	Content     string     `json:"content"`
	Language    Language   `json:"language,omitempty"`
	ServiceName string     `json:"service_name,omitempty"`
	SymbolName  string     `json:"symbol_name"`
	SymbolKind  SymbolKind `json:"symbol_kind"`
	LineStart   int        `json:"line_start"`
	LineEnd     int        `json:"line_end"`
	Score       float64    `json:"score"`
}

// GraphAnalysis is the read-only summary produced by the graph analyzer.
// BuildOrder is nil whenever the graph is cyclic.
type GraphAnalysis struct {
	NodeCount      int          `json:"node_count"`
	EdgeCount      int          `json:"edge_count"`
	IsDAG          bool         `json:"is_dag"`
	Cycles         [][]string   `json:"cycles,omitempty"`
	TopFiles       []RankedFile `json:"top_files"`
	ComponentCount int          `json:"component_count"`
	BuildOrder     []string     `json:"build_order,omitempty"`
}

// RankedFile pairs a file with its centrality score.
type RankedFile struct {
	FilePath string  `json:"file_path"`
	Score    float64 `json:"score"`
}
