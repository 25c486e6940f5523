// Package embedder generates vector embeddings for code chunks.
//
// Two providers are available: an OpenAI-compatible HTTP provider and
// a deterministic local provider that derives vectors from content
// hashes. Both normalize vectors to unit length and share an LRU cache
// keyed by content hash, so re-indexing unchanged code never repeats a
// provider call.
package embedder
