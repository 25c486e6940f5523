package semantic

import (
	"context"
	"fmt"
	"strings"

	"github.com/dhollis/codeatlas-mcp/internal/embedder"
	"github.com/dhollis/codeatlas-mcp/internal/storage"
	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// Indexer extracts per-symbol chunks from file content, embeds them,
// and stores them in the vector store.
type Indexer struct {
	store    storage.Storage
	vectors  storage.VectorStore
	embedder embedder.Embedder
}

// NewIndexer creates a semantic indexer.
func NewIndexer(store storage.Storage, vectors storage.VectorStore, emb embedder.Embedder) *Indexer {
	return &Indexer{store: store, vectors: vectors, embedder: emb}
}

// IndexSymbols chunks the given symbols out of source, embeds the
// chunks, and replaces the file's chunks in the vector store in one
// batch. Symbols whose line ranges fall outside the file or whose
// content is blank are skipped. Each stored chunk's ID is written back
// to its symbol record.
func (x *Indexer) IndexSymbols(ctx context.Context, filePath string, source []byte, symbols []*types.Symbol) (int, error) {
	lines := strings.Split(string(source), "\n")
	total := len(lines)

	var records []storage.ChunkRecord
	var linked []*types.Symbol
	var texts []string

	for _, sym := range symbols {
		content, ok := sliceLines(lines, total, sym.LineStart, sym.LineEnd)
		if !ok {
			continue
		}
		chunk := types.CodeChunk{
			ID:          types.ChunkID(filePath, sym.Name),
			FilePath:    filePath,
			SymbolName:  sym.Name,
			SymbolKind:  sym.Kind,
			Language:    sym.Language,
			ServiceName: sym.ServiceName,
			LineStart:   clampLine(sym.LineStart, total),
			LineEnd:     clampLine(sym.LineEnd, total),
			Content:     content,
		}
		if err := chunk.Validate(); err != nil {
			continue
		}
		records = append(records, storage.ChunkRecord{Chunk: chunk})
		linked = append(linked, sym)
		texts = append(texts, embeddingText(sym, content))
	}

	// Nothing to store means nothing to touch: skip the vector store
	// entirely rather than issuing an empty replace.
	if len(records) == 0 {
		return 0, nil
	}

	if err := x.vectors.DeleteChunksByFile(ctx, filePath); err != nil {
		return 0, fmt.Errorf("failed to clear chunks for %s: %w", filePath, err)
	}

	embeddings, err := x.embedder.GenerateBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks for %s: %w", filePath, err)
	}
	for i, emb := range embeddings {
		records[i].Vector = emb.Vector
	}

	if err := x.vectors.InsertChunks(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to store chunks for %s: %w", filePath, err)
	}

	for i, sym := range linked {
		sym.ChunkID = records[i].Chunk.ID
		if err := x.store.SetSymbolChunkID(ctx, sym.ID, records[i].Chunk.ID); err != nil {
			return 0, fmt.Errorf("failed to link chunk to symbol %s: %w", sym.ID, err)
		}
	}
	return len(records), nil
}

// DeleteFile removes all chunks for a file from the vector store.
func (x *Indexer) DeleteFile(ctx context.Context, filePath string) error {
	return x.vectors.DeleteChunksByFile(ctx, filePath)
}

// sliceLines extracts a 1-based inclusive line range, clamped to the
// file bounds. Returns false for ranges entirely outside the file or
// blank content.
func sliceLines(lines []string, total, start, end int) (string, bool) {
	if start > total || end < 1 {
		return "", false
	}
	start = clampLine(start, total)
	end = clampLine(end, total)
	if start > end {
		return "", false
	}
	content := strings.Join(lines[start-1:end], "\n")
	if len(content) > types.MaxChunkBytes {
		content = content[:types.MaxChunkBytes]
	}
	if strings.TrimSpace(content) == "" {
		return "", false
	}
	return content, true
}

func clampLine(n, total int) int {
	if n < 1 {
		return 1
	}
	if n > total {
		return total
	}
	return n
}

// embeddingText prepends symbol metadata to the chunk content so the
// embedding captures name and kind, not just the body.
func embeddingText(sym *types.Symbol, content string) string {
	var b strings.Builder
	b.WriteString(string(sym.Kind))
	b.WriteString(" ")
	b.WriteString(sym.QualifiedName())
	if sym.Signature != "" {
		b.WriteString("\n")
		b.WriteString(sym.Signature)
	}
	if sym.Docstring != "" {
		b.WriteString("\n")
		b.WriteString(sym.Docstring)
	}
	b.WriteString("\n")
	b.WriteString(content)
	return b.String()
}
