package types

import (
	"crypto/sha256"
	"errors"
)

// MaxChunkBytes clamps the source excerpt stored per chunk. Oversized
// symbols are truncated rather than skipped so they stay searchable.
const MaxChunkBytes = 8192

// CodeChunk is a literal source excerpt for one symbol, destined for the
// embedding store. The ID mirrors the symbol ID convention: "file::symbol".
type CodeChunk struct {
	ID          string
	FilePath    string
	Content     string
	Language    Language
	ServiceName string
	SymbolName  string
	SymbolKind  SymbolKind
	LineStart   int
	LineEnd     int
}

// ChunkID builds the chunk identifier for a symbol.
func ChunkID(filePath, symbolName string) string {
	return filePath + "::" + symbolName
}

// Validate checks chunk content and line span.
func (c *CodeChunk) Validate() error {
	if c.Content == "" {
		return errors.New("chunk content cannot be empty")
	}
	if c.LineStart <= 0 || c.LineEnd <= 0 {
		return errors.New("chunk line numbers must be positive")
	}
	if c.LineStart > c.LineEnd {
		return errors.New("chunk start line must be before or equal to end line")
	}
	return nil
}

// ContentHash returns the SHA-256 of the chunk content, used for embedding
// cache keys and deduplication.
func (c *CodeChunk) ContentHash() [32]byte {
	return sha256.Sum256([]byte(c.Content))
}
