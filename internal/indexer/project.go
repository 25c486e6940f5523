package indexer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/dhollis/codeatlas-mcp/internal/parser"
	"github.com/dhollis/codeatlas-mcp/internal/storage"
)

// ProjectConfig configures a whole-project indexing run.
type ProjectConfig struct {
	// Workers is the concurrent file limit (default: runtime.NumCPU()).
	Workers int

	// Force re-indexes files whose content hash is unchanged.
	Force bool
}

// skipDirs are directories never worth indexing regardless of
// .gitignore contents.
var skipDirs = map[string]bool{
	"node_modules":  true,
	"vendor":        true,
	"__pycache__":   true,
	".git":          true,
	"dist":          true,
	"build":         true,
	".venv":         true,
	"venv":          true,
	".tox":          true,
	".mypy_cache":   true,
	".pytest_cache": true,
}

// Statistics summarizes a project indexing run.
type Statistics struct {
	FilesIndexed      int           `json:"files_indexed"`
	FilesSkipped      int           `json:"files_skipped"`
	FilesFailed       int           `json:"files_failed"`
	SymbolsExtracted  int           `json:"symbols_extracted"`
	DependenciesFound int           `json:"dependencies_found"`
	Duration          time.Duration `json:"duration_ns"`
	ErrorMessages     []string      `json:"errors,omitempty"`
}

// IndexProject walks the project root, indexing every supported source
// file with a bounded worker pool. Files matched by the root .gitignore
// are skipped, as are files whose content hash is unchanged since the
// last run. The graph snapshot is persisted at the end.
func (idx *Indexer) IndexProject(ctx context.Context, cfg *ProjectConfig) (*Statistics, error) {
	if cfg == nil {
		cfg = &ProjectConfig{}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	stats := &Statistics{ErrorMessages: []string{}}

	files, err := idx.discoverFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	var (
		indexed int32
		skipped int32
		failed  int32
		symbols int32
		deps    int32
		mu      sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, relPath := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if !cfg.Force {
				unchanged, err := idx.fileUnchanged(gctx, relPath)
				if err == nil && unchanged {
					atomic.AddInt32(&skipped, 1)
					return nil
				}
			}

			result, err := idx.IndexFile(gctx, FileRequest{FilePath: relPath})
			if err != nil {
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", relPath, err))
				mu.Unlock()
				return nil
			}

			atomic.AddInt32(&symbols, int32(result.SymbolsFound))
			atomic.AddInt32(&deps, int32(result.DependenciesFound))
			if result.Indexed {
				atomic.AddInt32(&indexed, 1)
			} else {
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, result.Errors...)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := idx.SaveSnapshot(ctx); err != nil {
		stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("failed to persist graph snapshot: %v", err))
	}

	stats.FilesIndexed = int(indexed)
	stats.FilesSkipped = int(skipped)
	stats.FilesFailed = int(failed)
	stats.SymbolsExtracted = int(symbols)
	stats.DependenciesFound = int(deps)
	stats.Duration = time.Since(start)
	return stats, nil
}

// discoverFiles walks the project root collecting supported source
// files as slash-separated relative paths.
func (idx *Indexer) discoverFiles() ([]string, error) {
	root := idx.projectRoot
	if root == "" {
		root = "."
	}

	var ignore *gitignore.GitIgnore
	if gi, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		ignore = gi
	}

	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if info.IsDir() {
			name := info.Name()
			if skipDirs[name] || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if ignore != nil && ignore.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if ignore != nil && ignore.MatchesPath(rel) {
			return nil
		}
		if _, err := parser.DetectLanguage(rel); err != nil {
			return nil
		}
		if info.Size() > parser.MaxFileSize {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	return files, err
}

// fileUnchanged reports whether the stored content hash for relPath
// matches the file on disk.
func (idx *Indexer) fileUnchanged(ctx context.Context, relPath string) (bool, error) {
	record, err := idx.store.GetFile(ctx, relPath)
	if err != nil {
		if err == storage.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	source, err := os.ReadFile(filepath.Join(idx.projectRoot, filepath.FromSlash(relPath)))
	if err != nil {
		return false, err
	}
	return sha256.Sum256(source) == record.ContentHash, nil
}
