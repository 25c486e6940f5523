// Package indexer orchestrates the indexing pipeline.
//
// For each file: parse, normalize symbols, resolve imports, persist,
// update the dependency graph, then semantic indexing as a best-effort
// final step. Per-file try-locks reject concurrent indexing of the
// same path; a project-wide walk coordinates a bounded worker pool and
// persists the graph snapshot when it finishes.
package indexer
