package storage

import (
	"context"
	"errors"
	"time"

	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist.
	ErrNotFound = errors.New("not found")
)

// Storage is the relational store for indexed files, symbols, import
// references, dependency edges, and graph snapshots. All per-file write
// operations are insert-or-replace by key; Replace* calls swap a file's
// rows wholesale inside one transaction so re-indexing never accumulates
// stale rows.
type Storage interface {
	// File operations
	UpsertFile(ctx context.Context, file *IndexedFile) error
	GetFile(ctx context.Context, filePath string) (*IndexedFile, error)
	ListFiles(ctx context.Context) ([]*IndexedFile, error)
	DeleteFile(ctx context.Context, filePath string) error

	// Symbol operations
	ReplaceSymbols(ctx context.Context, filePath string, symbols []*types.Symbol) error
	ListSymbolsByFile(ctx context.Context, filePath string) ([]*types.Symbol, error)
	ListSymbols(ctx context.Context) ([]*types.Symbol, error)
	SetSymbolChunkID(ctx context.Context, symbolID, chunkID string) error

	// Import reference operations
	ReplaceImports(ctx context.Context, filePath string, imports []types.ImportReference) error
	ListImportsByFile(ctx context.Context, filePath string) ([]types.ImportReference, error)

	// Dependency edge operations
	ReplaceEdges(ctx context.Context, filePath string, edges []types.DependencyEdge) error
	ListEdges(ctx context.Context) ([]types.DependencyEdge, error)

	// Graph snapshot operations
	SaveGraphSnapshot(ctx context.Context, name string, data []byte) error
	LoadGraphSnapshot(ctx context.Context, name string) ([]byte, error)

	// Database operations
	Close() error
}

// VectorStore is the embedding index contract: batch insert, delete by
// file metadata, and metadata-filtered nearest-neighbor query. The engine
// treats the implementation as opaque.
type VectorStore interface {
	// InsertChunks stores a batch of chunks and their vectors in one call.
	InsertChunks(ctx context.Context, chunks []ChunkRecord) error

	// DeleteChunksByFile removes every chunk whose file_path metadata
	// matches.
	DeleteChunksByFile(ctx context.Context, filePath string) error

	// QueryNearest returns the topK chunks nearest to vector, optionally
	// restricted by an equality/AND metadata filter. Distance is cosine
	// distance in [0, 2]; lower is nearer.
	QueryNearest(ctx context.Context, vector []float32, topK int, filter *ChunkFilter) ([]ChunkMatch, error)
}

// IndexedFile is one tracked source file.
type IndexedFile struct {
	FilePath      string
	Language      types.Language
	ServiceName   string
	ContentHash   [32]byte
	LineCount     int
	SizeBytes     int64
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ChunkRecord pairs a code chunk with its embedding vector for insertion.
type ChunkRecord struct {
	Chunk  types.CodeChunk
	Vector []float32
}

// ChunkFilter restricts a nearest-neighbor query by metadata equality.
// Both fields set means logical AND.
type ChunkFilter struct {
	Language    string
	ServiceName string
}

// ChunkMatch is one nearest-neighbor hit.
type ChunkMatch struct {
	Chunk    types.CodeChunk
	Distance float64
}
