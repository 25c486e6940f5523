// Package graph holds the file-level dependency graph and its read-only
// analysis algorithms: cycle detection, centrality ranking, topological
// build ordering, weak-connectivity components, and bounded forward and
// reverse traversals.
//
// The graph is one shared, mutable, in-process structure. It is not
// internally thread-safe: AddFile deletes and re-inserts edges
// non-atomically, so concurrent mutation must be serialized by the caller.
// All query paths degrade to empty results on absent or disconnected data
// rather than returning errors.
package graph
