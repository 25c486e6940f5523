package indexer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dhollis/codeatlas-mcp/internal/deadcode"
	"github.com/dhollis/codeatlas-mcp/internal/embedder"
	"github.com/dhollis/codeatlas-mcp/internal/graph"
	"github.com/dhollis/codeatlas-mcp/internal/parser"
	"github.com/dhollis/codeatlas-mcp/internal/resolver"
	"github.com/dhollis/codeatlas-mcp/internal/semantic"
	"github.com/dhollis/codeatlas-mcp/internal/storage"
	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// snapshotName is the graph snapshot key in storage.
const snapshotName = "project"

// Indexer coordinates the per-file pipeline: parse -> normalize ->
// resolve -> persist -> graph -> semantic.
type Indexer struct {
	parser   *parser.Parser
	resolver *resolver.Resolver
	store    storage.Storage
	semantic *semantic.Indexer

	graphMu sync.Mutex
	graph   *graph.Graph

	locks *fileLocks

	projectRoot string
	serviceName string
}

// Config configures an Indexer.
type Config struct {
	// ProjectRoot anchors relative file paths and import resolution.
	ProjectRoot string

	// ServiceName is attached to every symbol when set. When empty, the
	// top-level directory of each file's relative path is used, which
	// matches monorepo layouts with one service per directory.
	ServiceName string

	// Aliases are path-alias patterns for script import resolution.
	Aliases map[string]string

	// GoModule is the local Go module path, used to resolve internal Go
	// imports to project directories.
	GoModule string
}

// New creates an Indexer. A graph snapshot persisted by a previous run
// is restored when present; a missing or corrupt snapshot starts empty.
func New(ctx context.Context, store storage.Storage, vectors storage.VectorStore, emb embedder.Embedder, cfg Config) *Indexer {
	res := resolver.New(cfg.ProjectRoot)
	res.Aliases = cfg.Aliases
	res.GoModule = cfg.GoModule

	idx := &Indexer{
		parser:      parser.New(),
		resolver:    res,
		store:       store,
		semantic:    semantic.NewIndexer(store, vectors, emb),
		graph:       graph.New(),
		locks:       newFileLocks(),
		projectRoot: cfg.ProjectRoot,
		serviceName: cfg.ServiceName,
	}

	if data, err := store.LoadGraphSnapshot(ctx, snapshotName); err == nil {
		if g, err := graph.Restore(data); err == nil {
			idx.graph = g
		} else {
			log.Printf("indexer: discarding corrupt graph snapshot: %v", err)
		}
	}
	return idx
}

// FileRequest describes one file to index. Source is read from disk
// when nil.
type FileRequest struct {
	FilePath    string
	Source      []byte
	ServiceName string
}

// IndexFile runs the full pipeline for one file. Steps run in order
// and each failure short-circuits the rest, except semantic indexing,
// which is best-effort: its failure is recorded but durable writes are
// not rolled back. Indexed is true only when no step recorded an
// error.
//
// Concurrent calls for the same file return ErrIndexingInProgress
// instead of interleaving.
func (idx *Indexer) IndexFile(ctx context.Context, req FileRequest) (*types.IndexResult, error) {
	relPath, err := idx.relPath(req.FilePath)
	if err != nil {
		return nil, err
	}

	if !idx.locks.tryAcquire(relPath) {
		return nil, fmt.Errorf("%w: %s", types.ErrIndexingInProgress, relPath)
	}
	defer idx.locks.release(relPath)

	result := &types.IndexResult{Indexed: true, Errors: []string{}}

	source := req.Source
	if source == nil {
		source, err = os.ReadFile(filepath.Join(idx.projectRoot, filepath.FromSlash(relPath)))
		if err != nil {
			result.AddError(fmt.Sprintf("failed to read %s: %v", relPath, err))
			return result, nil
		}
	}
	if len(source) > parser.MaxFileSize {
		result.AddError(fmt.Sprintf("%s: %v", relPath, types.ErrFileTooLarge))
		return result, nil
	}

	lang, err := parser.DetectLanguage(relPath)
	if err != nil {
		result.AddError(fmt.Sprintf("%s: %v", relPath, err))
		return result, nil
	}

	parsed, err := idx.parser.Parse(ctx, source, relPath)
	if err != nil {
		result.AddError(fmt.Sprintf("failed to parse %s: %v", relPath, err))
		return result, nil
	}
	for _, perr := range parsed.Errors {
		result.AddError(perr.Error())
	}

	service := req.ServiceName
	if service == "" {
		service = idx.serviceFor(relPath)
	}

	symbols := parser.Normalize(relPath, lang, service, parsed.Symbols)
	refs := idx.resolver.Resolve(relPath, lang, parsed.Imports)
	edges := edgesForStorage(refs)

	result.SymbolsFound = len(symbols)
	result.DependenciesFound = len(refs)

	file := &storage.IndexedFile{
		FilePath:    relPath,
		Language:    lang,
		ServiceName: service,
		ContentHash: sha256.Sum256(source),
		LineCount:   strings.Count(string(source), "\n") + 1,
		SizeBytes:   int64(len(source)),
	}
	if err := idx.store.UpsertFile(ctx, file); err != nil {
		result.AddError(fmt.Sprintf("failed to store file %s: %v", relPath, err))
		return result, nil
	}
	if err := idx.store.ReplaceSymbols(ctx, relPath, symbols); err != nil {
		result.AddError(fmt.Sprintf("failed to store symbols for %s: %v", relPath, err))
		return result, nil
	}
	if err := idx.store.ReplaceImports(ctx, relPath, refs); err != nil {
		result.AddError(fmt.Sprintf("failed to store imports for %s: %v", relPath, err))
		return result, nil
	}
	if err := idx.store.ReplaceEdges(ctx, relPath, edges); err != nil {
		result.AddError(fmt.Sprintf("failed to store edges for %s: %v", relPath, err))
		return result, nil
	}

	idx.graphMu.Lock()
	idx.graph.AddFile(relPath, graph.NodeMeta{
		Language:    string(lang),
		ServiceName: service,
	}, graph.EdgesFromReferences(refs))
	idx.graphMu.Unlock()

	if _, err := idx.semantic.IndexSymbols(ctx, relPath, source, symbols); err != nil {
		result.AddError(fmt.Sprintf("semantic indexing failed for %s: %v", relPath, err))
	}
	return result, nil
}

// RemoveFile deletes a file from storage, the vector store, and the
// graph.
func (idx *Indexer) RemoveFile(ctx context.Context, filePath string) error {
	relPath, err := idx.relPath(filePath)
	if err != nil {
		return err
	}
	if err := idx.store.DeleteFile(ctx, relPath); err != nil {
		return err
	}
	if err := idx.semantic.DeleteFile(ctx, relPath); err != nil {
		return err
	}
	idx.graphMu.Lock()
	idx.graph.RemoveFile(relPath)
	idx.graphMu.Unlock()
	return nil
}

// Analyze returns the current graph analysis.
func (idx *Indexer) Analyze() *types.GraphAnalysis {
	idx.graphMu.Lock()
	defer idx.graphMu.Unlock()
	return idx.graph.Analyze()
}

// Dependencies returns the files filePath depends on, to the given
// depth.
func (idx *Indexer) Dependencies(filePath string, depth int) []string {
	idx.graphMu.Lock()
	defer idx.graphMu.Unlock()
	return idx.graph.Dependencies(filePath, depth)
}

// Dependents returns the files that depend on filePath, to the given
// depth.
func (idx *Indexer) Dependents(filePath string, depth int) []string {
	idx.graphMu.Lock()
	defer idx.graphMu.Unlock()
	return idx.graph.Dependents(filePath, depth)
}

// Impact returns every file transitively affected by a change to
// filePath.
func (idx *Indexer) Impact(filePath string) []string {
	idx.graphMu.Lock()
	defer idx.graphMu.Unlock()
	return idx.graph.Impact(filePath)
}

// DeadCode runs the dead-code detector over all stored symbols and the
// current graph.
func (idx *Indexer) DeadCode(ctx context.Context) ([]types.DeadCodeEntry, error) {
	symbols, err := idx.store.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}
	idx.graphMu.Lock()
	defer idx.graphMu.Unlock()
	refs := deadcode.ReferencesFromGraph(idx.graph)
	return deadcode.New().Detect(symbols, refs, idx.graph), nil
}

// SaveSnapshot persists the in-memory graph so a later process can
// restore it without re-indexing.
func (idx *Indexer) SaveSnapshot(ctx context.Context) error {
	idx.graphMu.Lock()
	snap := idx.graph.Snapshot()
	idx.graphMu.Unlock()

	data, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal graph snapshot: %w", err)
	}
	return idx.store.SaveGraphSnapshot(ctx, snapshotName, data)
}

// Status summarizes the index.
type Status struct {
	Files     int `json:"files"`
	Symbols   int `json:"symbols"`
	GraphSize int `json:"graph_nodes"`
	Edges     int `json:"graph_edges"`
}

// Status reports index size counters.
func (idx *Indexer) Status(ctx context.Context) (*Status, error) {
	files, err := idx.store.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	symbols, err := idx.store.ListSymbols(ctx)
	if err != nil {
		return nil, err
	}
	idx.graphMu.Lock()
	defer idx.graphMu.Unlock()
	return &Status{
		Files:     len(files),
		Symbols:   len(symbols),
		GraphSize: idx.graph.NodeCount(),
		Edges:     idx.graph.EdgeCount(),
	}, nil
}

// relPath normalizes a request path to a slash-separated path relative
// to the project root.
func (idx *Indexer) relPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path is required")
	}
	if filepath.IsAbs(path) && idx.projectRoot != "" {
		rel, err := filepath.Rel(idx.projectRoot, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return "", fmt.Errorf("path %s is outside project root", path)
		}
		path = rel
	}
	return filepath.ToSlash(path), nil
}

// serviceFor derives a service name from the top-level directory of a
// relative path. Files at the root have no service.
func (idx *Indexer) serviceFor(relPath string) string {
	if i := strings.Index(relPath, "/"); i > 0 {
		return relPath[:i]
	}
	return ""
}

// edgesForStorage converts resolved import references into durable
// dependency edge rows.
func edgesForStorage(refs []types.ImportReference) []types.DependencyEdge {
	edges := make([]types.DependencyEdge, 0, len(refs))
	for _, ref := range refs {
		if ref.TargetFile == "" || ref.TargetFile == ref.SourceFile {
			continue
		}
		edges = append(edges, types.DependencyEdge{
			SourceFile: ref.SourceFile,
			TargetFile: ref.TargetFile,
			Relation:   types.RelationImports,
			Line:       ref.Line,
		})
	}
	return edges
}
