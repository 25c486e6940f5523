// Package semantic turns indexed symbols into searchable embeddings.
//
// The indexer slices each symbol's source lines into a chunk, embeds
// the chunks in one batch, and swaps the file's chunk set in the
// vector store atomically. The searcher embeds a query and ranks
// chunks by cosine similarity, optionally filtered by language and
// service metadata, with an LRU response cache in front of the store.
package semantic
