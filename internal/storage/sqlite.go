package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// SQLiteStorage implements Storage and VectorStore using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings.
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance and applies
// migrations.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// File operations

// UpsertFile inserts or replaces a tracked file by path.
func (s *SQLiteStorage) UpsertFile(ctx context.Context, file *IndexedFile) error {
	query := `
		INSERT INTO indexed_files (file_path, language, service_name, content_hash, line_count, size_bytes, last_indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			language = excluded.language,
			service_name = excluded.service_name,
			content_hash = excluded.content_hash,
			line_count = excluded.line_count,
			size_bytes = excluded.size_bytes,
			last_indexed_at = excluded.last_indexed_at,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	_, err := s.db.ExecContext(ctx, query,
		file.FilePath, string(file.Language), file.ServiceName, file.ContentHash[:],
		file.LineCount, file.SizeBytes, now, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}
	file.LastIndexedAt = now
	file.UpdatedAt = now
	return nil
}

// GetFile fetches one tracked file by path.
func (s *SQLiteStorage) GetFile(ctx context.Context, filePath string) (*IndexedFile, error) {
	query := `
		SELECT file_path, language, service_name, content_hash, line_count, size_bytes,
		       last_indexed_at, created_at, updated_at
		FROM indexed_files
		WHERE file_path = ?
	`
	var file IndexedFile
	var lang, service sql.NullString
	var hash []byte
	var lastIndexed sql.NullTime
	err := s.db.QueryRowContext(ctx, query, filePath).Scan(
		&file.FilePath, &lang, &service, &hash, &file.LineCount, &file.SizeBytes,
		&lastIndexed, &file.CreatedAt, &file.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	file.Language = types.Language(lang.String)
	file.ServiceName = service.String
	copy(file.ContentHash[:], hash)
	if lastIndexed.Valid {
		file.LastIndexedAt = lastIndexed.Time
	}
	return &file, nil
}

// ListFiles returns every tracked file.
func (s *SQLiteStorage) ListFiles(ctx context.Context) ([]*IndexedFile, error) {
	query := `
		SELECT file_path, language, service_name, content_hash, line_count, size_bytes,
		       last_indexed_at, created_at, updated_at
		FROM indexed_files
		ORDER BY file_path
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []*IndexedFile
	for rows.Next() {
		var file IndexedFile
		var lang, service sql.NullString
		var hash []byte
		var lastIndexed sql.NullTime
		if err := rows.Scan(&file.FilePath, &lang, &service, &hash, &file.LineCount,
			&file.SizeBytes, &lastIndexed, &file.CreatedAt, &file.UpdatedAt); err != nil {
			return nil, err
		}
		file.Language = types.Language(lang.String)
		file.ServiceName = service.String
		copy(file.ContentHash[:], hash)
		if lastIndexed.Valid {
			file.LastIndexedAt = lastIndexed.Time
		}
		files = append(files, &file)
	}
	return files, rows.Err()
}

// DeleteFile removes a file and its dependent rows.
func (s *SQLiteStorage) DeleteFile(ctx context.Context, filePath string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM symbols WHERE file_path = ?`,
		`DELETE FROM import_references WHERE source_file = ?`,
		`DELETE FROM dependency_edges WHERE source_file = ?`,
		`DELETE FROM indexed_files WHERE file_path = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, filePath); err != nil {
			return fmt.Errorf("failed to delete file rows: %w", err)
		}
	}
	return tx.Commit()
}

// Symbol operations

// ReplaceSymbols swaps a file's symbol rows wholesale in one transaction.
func (s *SQLiteStorage) ReplaceSymbols(ctx context.Context, filePath string, symbols []*types.Symbol) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM symbols WHERE file_path = ?`, filePath); err != nil {
		return fmt.Errorf("failed to clear symbols: %w", err)
	}

	insert := `
		INSERT OR REPLACE INTO symbols (id, file_path, name, kind, language, service_name,
			line_start, line_end, signature, docstring, is_exported, parent_symbol, chunk_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, sym := range symbols {
		if _, err := tx.ExecContext(ctx, insert,
			sym.ID, sym.FilePath, sym.Name, string(sym.Kind), string(sym.Language),
			sym.ServiceName, sym.LineStart, sym.LineEnd, sym.Signature, sym.Docstring,
			sym.IsExported, sym.ParentSymbol, sym.ChunkID); err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", sym.ID, err)
		}
	}
	return tx.Commit()
}

// ListSymbolsByFile returns a file's symbols ordered by start line.
func (s *SQLiteStorage) ListSymbolsByFile(ctx context.Context, filePath string) ([]*types.Symbol, error) {
	return s.querySymbols(ctx, `WHERE file_path = ? ORDER BY line_start`, filePath)
}

// ListSymbols returns every symbol in the index.
func (s *SQLiteStorage) ListSymbols(ctx context.Context) ([]*types.Symbol, error) {
	return s.querySymbols(ctx, `ORDER BY file_path, line_start`)
}

func (s *SQLiteStorage) querySymbols(ctx context.Context, clause string, args ...interface{}) ([]*types.Symbol, error) {
	query := `
		SELECT id, file_path, name, kind, language, service_name, line_start, line_end,
		       signature, docstring, is_exported, parent_symbol, chunk_id
		FROM symbols ` + clause
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var symbols []*types.Symbol
	for rows.Next() {
		var sym types.Symbol
		var kind, lang string
		var service, signature, docstring, parent, chunkID sql.NullString
		if err := rows.Scan(&sym.ID, &sym.FilePath, &sym.Name, &kind, &lang, &service,
			&sym.LineStart, &sym.LineEnd, &signature, &docstring, &sym.IsExported,
			&parent, &chunkID); err != nil {
			return nil, err
		}
		sym.Kind = types.SymbolKind(kind)
		sym.Language = types.Language(lang)
		sym.ServiceName = service.String
		sym.Signature = signature.String
		sym.Docstring = docstring.String
		sym.ParentSymbol = parent.String
		sym.ChunkID = chunkID.String
		symbols = append(symbols, &sym)
	}
	return symbols, rows.Err()
}

// SetSymbolChunkID back-links a symbol row to its semantic chunk.
func (s *SQLiteStorage) SetSymbolChunkID(ctx context.Context, symbolID, chunkID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE symbols SET chunk_id = ? WHERE id = ?`, chunkID, symbolID)
	if err != nil {
		return fmt.Errorf("failed to set chunk id: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Import reference operations

// ReplaceImports swaps a file's import references wholesale.
func (s *SQLiteStorage) ReplaceImports(ctx context.Context, filePath string, imports []types.ImportReference) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM import_references WHERE source_file = ?`, filePath); err != nil {
		return fmt.Errorf("failed to clear imports: %w", err)
	}

	insert := `
		INSERT INTO import_references (source_file, target_file, imported_names, line, is_relative)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, imp := range imports {
		names, err := json.Marshal(imp.ImportedNames)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insert,
			imp.SourceFile, imp.TargetFile, string(names), imp.Line, imp.IsRelative); err != nil {
			return fmt.Errorf("failed to insert import: %w", err)
		}
	}
	return tx.Commit()
}

// ListImportsByFile returns a file's import references.
func (s *SQLiteStorage) ListImportsByFile(ctx context.Context, filePath string) ([]types.ImportReference, error) {
	query := `
		SELECT source_file, target_file, imported_names, line, is_relative
		FROM import_references
		WHERE source_file = ?
		ORDER BY line
	`
	rows, err := s.db.QueryContext(ctx, query, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var imports []types.ImportReference
	for rows.Next() {
		var imp types.ImportReference
		var names sql.NullString
		var line sql.NullInt64
		if err := rows.Scan(&imp.SourceFile, &imp.TargetFile, &names, &line, &imp.IsRelative); err != nil {
			return nil, err
		}
		if names.Valid && names.String != "" {
			_ = json.Unmarshal([]byte(names.String), &imp.ImportedNames)
		}
		imp.Line = int(line.Int64)
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}

// Dependency edge operations

// ReplaceEdges swaps a source file's dependency edges wholesale.
func (s *SQLiteStorage) ReplaceEdges(ctx context.Context, filePath string, edges []types.DependencyEdge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM dependency_edges WHERE source_file = ?`, filePath); err != nil {
		return fmt.Errorf("failed to clear edges: %w", err)
	}

	insert := `
		INSERT INTO dependency_edges (source_symbol_id, target_symbol_id, relation, source_file, target_file, line)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, e := range edges {
		if _, err := tx.ExecContext(ctx, insert,
			e.SourceSymbolID, e.TargetSymbolID, string(e.Relation),
			e.SourceFile, e.TargetFile, e.Line); err != nil {
			return fmt.Errorf("failed to insert edge: %w", err)
		}
	}
	return tx.Commit()
}

// ListEdges returns every dependency edge.
func (s *SQLiteStorage) ListEdges(ctx context.Context) ([]types.DependencyEdge, error) {
	query := `
		SELECT source_symbol_id, target_symbol_id, relation, source_file, target_file, line
		FROM dependency_edges
		ORDER BY source_file, target_file
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var edges []types.DependencyEdge
	for rows.Next() {
		var e types.DependencyEdge
		var srcSym, tgtSym sql.NullString
		var relation string
		var line sql.NullInt64
		if err := rows.Scan(&srcSym, &tgtSym, &relation, &e.SourceFile, &e.TargetFile, &line); err != nil {
			return nil, err
		}
		e.SourceSymbolID = srcSym.String
		e.TargetSymbolID = tgtSym.String
		e.Relation = types.Relation(relation)
		e.Line = int(line.Int64)
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// Graph snapshot operations

// SaveGraphSnapshot inserts or replaces a named snapshot blob.
func (s *SQLiteStorage) SaveGraphSnapshot(ctx context.Context, name string, data []byte) error {
	query := `
		INSERT INTO graph_snapshots (name, data, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at
	`
	if _, err := s.db.ExecContext(ctx, query, name, data, time.Now()); err != nil {
		return fmt.Errorf("failed to save graph snapshot: %w", err)
	}
	return nil
}

// LoadGraphSnapshot loads a named snapshot blob.
func (s *SQLiteStorage) LoadGraphSnapshot(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM graph_snapshots WHERE name = ?`, name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load graph snapshot: %w", err)
	}
	return data, nil
}
