package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// InsertChunks stores a batch of chunks and their vectors in one
// transaction, satisfying the vector store's one-call batch contract.
func (s *SQLiteStorage) InsertChunks(ctx context.Context, chunks []ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	chunkInsert := `
		INSERT OR REPLACE INTO chunks (id, file_path, content, language, service_name,
			symbol_name, symbol_kind, line_start, line_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	embeddingInsert := `
		INSERT OR REPLACE INTO embeddings (chunk_id, vector, dimension)
		VALUES (?, ?, ?)
	`
	now := time.Now()
	for _, rec := range chunks {
		c := rec.Chunk
		if _, err := tx.ExecContext(ctx, chunkInsert,
			c.ID, c.FilePath, c.Content, string(c.Language), c.ServiceName,
			c.SymbolName, string(c.SymbolKind), c.LineStart, c.LineEnd, now); err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", c.ID, err)
		}
		if _, err := tx.ExecContext(ctx, embeddingInsert,
			c.ID, serializeVector(rec.Vector), len(rec.Vector)); err != nil {
			return fmt.Errorf("failed to insert embedding for %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// DeleteChunksByFile removes every chunk (and embedding, via cascade)
// whose file_path metadata matches.
func (s *SQLiteStorage) DeleteChunksByFile(ctx context.Context, filePath string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE file_path = ?`, filePath); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// QueryNearest performs a metadata-filtered nearest-neighbor query using
// cosine distance. The SQL layer applies the equality/AND filter; distance
// ranking runs in Go, which keeps the purego build free of any native
// vector extension.
func (s *SQLiteStorage) QueryNearest(ctx context.Context, vector []float32, topK int, filter *ChunkFilter) ([]ChunkMatch, error) {
	if topK <= 0 {
		return []ChunkMatch{}, nil
	}

	query := `
		SELECT c.id, c.file_path, c.content, c.language, c.service_name,
		       c.symbol_name, c.symbol_kind, c.line_start, c.line_end, e.vector
		FROM chunks c
		INNER JOIN embeddings e ON c.id = e.chunk_id
	`
	var args []interface{}
	query, args = applyChunkFilter(query, args, filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []ChunkMatch
	for rows.Next() {
		var c types.CodeChunk
		var lang, service, kind sql.NullString
		var blob []byte
		if err := rows.Scan(&c.ID, &c.FilePath, &c.Content, &lang, &service,
			&c.SymbolName, &kind, &c.LineStart, &c.LineEnd, &blob); err != nil {
			return nil, err
		}
		c.Language = types.Language(lang.String)
		c.ServiceName = service.String
		c.SymbolKind = types.SymbolKind(kind.String)

		candidate := deserializeVector(blob)
		matches = append(matches, ChunkMatch{
			Chunk:    c,
			Distance: cosineDistance(vector, candidate),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// applyChunkFilter appends equality predicates for the metadata filter.
// Both fields present means logical AND.
func applyChunkFilter(query string, args []interface{}, filter *ChunkFilter) (string, []interface{}) {
	if filter == nil {
		return query, args
	}
	clause := " WHERE 1=1"
	if filter.Language != "" {
		clause += " AND c.language = ?"
		args = append(args, filter.Language)
	}
	if filter.ServiceName != "" {
		clause += " AND c.service_name = ?"
		args = append(args, filter.ServiceName)
	}
	return query + clause, args
}

// serializeVector encodes a float32 slice as little-endian bytes.
func serializeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// deserializeVector decodes little-endian bytes back to float32s.
func deserializeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

// cosineDistance returns 1 - cosine similarity. Mismatched or zero-norm
// vectors are maximally distant rather than an error.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
