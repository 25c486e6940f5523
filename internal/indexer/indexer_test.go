package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhollis/codeatlas-mcp/internal/embedder"
	"github.com/dhollis/codeatlas-mcp/internal/storage"
	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

const serviceSource = `from .models import User

def login(user):
    return User(user)
`

const modelsSource = `class User:
    def __init__(self, name):
        self.name = name
`

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestIndexer(t *testing.T, root string) (*Indexer, *storage.SQLiteStorage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	idx := New(context.Background(), store, store, embedder.NewLocalProvider(32, 0), Config{
		ProjectRoot: root,
	})
	return idx, store
}

func TestIndexFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "auth/models.py", modelsSource)
	writeFile(t, root, "auth/service.py", serviceSource)

	idx, store := newTestIndexer(t, root)
	ctx := context.Background()

	result, err := idx.IndexFile(ctx, FileRequest{FilePath: "auth/service.py"})
	require.NoError(t, err)
	assert.True(t, result.Indexed)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.SymbolsFound)
	assert.Equal(t, 1, result.DependenciesFound)

	file, err := store.GetFile(ctx, "auth/service.py")
	require.NoError(t, err)
	assert.Equal(t, types.LangPython, file.Language)
	assert.Equal(t, "auth", file.ServiceName)

	symbols, err := store.ListSymbolsByFile(ctx, "auth/service.py")
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "login", symbols[0].Name)
	assert.Equal(t, "auth", symbols[0].ServiceName)
	assert.Equal(t, "auth/service.py::login", symbols[0].ChunkID)

	imports, err := store.ListImportsByFile(ctx, "auth/service.py")
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, "auth/models.py", imports[0].TargetFile)

	deps := idx.Dependencies("auth/service.py", 1)
	assert.Equal(t, []string{"auth/models.py"}, deps)
}

func TestIndexFileInlineSource(t *testing.T) {
	idx, store := newTestIndexer(t, t.TempDir())
	ctx := context.Background()

	result, err := idx.IndexFile(ctx, FileRequest{
		FilePath: "lib/util.py",
		Source:   []byte("def helper():\n    return 1\n"),
	})
	require.NoError(t, err)
	assert.True(t, result.Indexed)
	assert.Equal(t, 1, result.SymbolsFound)

	_, err = store.GetFile(ctx, "lib/util.py")
	require.NoError(t, err)
}

func TestIndexFileServiceOverride(t *testing.T) {
	idx, store := newTestIndexer(t, t.TempDir())
	ctx := context.Background()

	_, err := idx.IndexFile(ctx, FileRequest{
		FilePath:    "auth/service.py",
		Source:      []byte(serviceSource),
		ServiceName: "identity",
	})
	require.NoError(t, err)

	file, err := store.GetFile(ctx, "auth/service.py")
	require.NoError(t, err)
	assert.Equal(t, "identity", file.ServiceName)
}

func TestIndexFileMissing(t *testing.T) {
	idx, _ := newTestIndexer(t, t.TempDir())

	result, err := idx.IndexFile(context.Background(), FileRequest{FilePath: "ghost.py"})
	require.NoError(t, err)
	assert.False(t, result.Indexed)
	assert.NotEmpty(t, result.Errors)
}

func TestIndexFileUnsupportedLanguage(t *testing.T) {
	idx, _ := newTestIndexer(t, t.TempDir())

	result, err := idx.IndexFile(context.Background(), FileRequest{
		FilePath: "README.md",
		Source:   []byte("# readme"),
	})
	require.NoError(t, err)
	assert.False(t, result.Indexed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unsupported")
}

func TestIndexFileEmptyPath(t *testing.T) {
	idx, _ := newTestIndexer(t, t.TempDir())
	_, err := idx.IndexFile(context.Background(), FileRequest{})
	assert.Error(t, err)
}

func TestIndexFileOutsideRoot(t *testing.T) {
	idx, _ := newTestIndexer(t, t.TempDir())
	_, err := idx.IndexFile(context.Background(), FileRequest{
		FilePath: filepath.Join(os.TempDir(), "elsewhere", "x.py"),
	})
	assert.Error(t, err)
}

func TestIndexFileBusy(t *testing.T) {
	idx, _ := newTestIndexer(t, t.TempDir())

	require.True(t, idx.locks.tryAcquire("auth/service.py"))
	defer idx.locks.release("auth/service.py")

	_, err := idx.IndexFile(context.Background(), FileRequest{
		FilePath: "auth/service.py",
		Source:   []byte(serviceSource),
	})
	assert.ErrorIs(t, err, types.ErrIndexingInProgress)
}

func TestIndexFileReindexReplaces(t *testing.T) {
	idx, store := newTestIndexer(t, t.TempDir())
	ctx := context.Background()

	_, err := idx.IndexFile(ctx, FileRequest{
		FilePath: "a.py",
		Source:   []byte("def old():\n    pass\n"),
	})
	require.NoError(t, err)

	_, err = idx.IndexFile(ctx, FileRequest{
		FilePath: "a.py",
		Source:   []byte("def renamed():\n    pass\n"),
	})
	require.NoError(t, err)

	symbols, err := store.ListSymbolsByFile(ctx, "a.py")
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "renamed", symbols[0].Name)
}

func TestRemoveFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "auth/models.py", modelsSource)
	writeFile(t, root, "auth/service.py", serviceSource)

	idx, store := newTestIndexer(t, root)
	ctx := context.Background()

	_, err := idx.IndexFile(ctx, FileRequest{FilePath: "auth/service.py"})
	require.NoError(t, err)

	require.NoError(t, idx.RemoveFile(ctx, "auth/service.py"))

	_, err = store.GetFile(ctx, "auth/service.py")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, idx.Dependencies("auth/service.py", 1))
}

func TestSnapshotRoundTrip(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "auth/models.py", modelsSource)
	writeFile(t, root, "auth/service.py", serviceSource)

	idx, store := newTestIndexer(t, root)
	ctx := context.Background()

	_, err := idx.IndexFile(ctx, FileRequest{FilePath: "auth/service.py"})
	require.NoError(t, err)
	require.NoError(t, idx.SaveSnapshot(ctx))

	// A fresh indexer over the same storage restores the graph.
	restored := New(ctx, store, store, embedder.NewLocalProvider(32, 0), Config{ProjectRoot: root})
	assert.Equal(t, []string{"auth/models.py"}, restored.Dependencies("auth/service.py", 1))
}

func TestStatus(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "auth/models.py", modelsSource)
	writeFile(t, root, "auth/service.py", serviceSource)

	idx, _ := newTestIndexer(t, root)
	ctx := context.Background()

	_, err := idx.IndexFile(ctx, FileRequest{FilePath: "auth/service.py"})
	require.NoError(t, err)
	_, err = idx.IndexFile(ctx, FileRequest{FilePath: "auth/models.py"})
	require.NoError(t, err)

	status, err := idx.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.Files)
	assert.Equal(t, 3, status.Symbols)
	assert.Equal(t, 2, status.GraphSize)
	assert.Equal(t, 1, status.Edges)
}

func TestServiceFor(t *testing.T) {
	idx := &Indexer{}
	assert.Equal(t, "auth", idx.serviceFor("auth/service.py"))
	assert.Equal(t, "auth", idx.serviceFor("auth/api/v1/handlers.py"))
	assert.Equal(t, "", idx.serviceFor("main.py"))
}

func TestEdgesForStorage(t *testing.T) {
	refs := []types.ImportReference{
		{SourceFile: "a.py", TargetFile: "b.py", Line: 1},
		{SourceFile: "a.py", TargetFile: "", Line: 2},
		{SourceFile: "a.py", TargetFile: "a.py", Line: 3},
	}
	edges := edgesForStorage(refs)
	require.Len(t, edges, 1)
	assert.Equal(t, "b.py", edges[0].TargetFile)
	assert.Equal(t, types.RelationImports, edges[0].Relation)
}
