// Package storage persists the index in SQLite: tracked files, canonical
// symbols, import references, dependency edges, graph snapshots, and the
// chunk/embedding tables backing the vector store contract.
//
// Two interfaces are exposed. Storage is the relational side with
// insert-or-replace-by-key and wholesale per-file replacement; VectorStore
// is the embedding index side with batch insert, delete-by-file, and
// metadata-filtered nearest-neighbor queries. SQLiteStorage implements
// both, but the engine depends only on the interfaces, so either side can
// be swapped for an external service.
//
// The package builds in two modes selected by build tags: CGO with
// github.com/mattn/go-sqlite3, or pure Go with modernc.org/sqlite.
package storage
