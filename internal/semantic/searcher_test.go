package semantic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhollis/codeatlas-mcp/internal/embedder"
	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// failingEmbedder errors on every call.
type failingEmbedder struct {
	embedder.Embedder
}

func (failingEmbedder) GenerateEmbedding(context.Context, string) (*embedder.Embedding, error) {
	return nil, errors.New("provider down")
}

func seedSearchChunks(t *testing.T, x *Indexer) {
	t.Helper()
	ctx := context.Background()

	login := pySymbol(t, "auth/service.py", "login", 1, 2)
	login.ServiceName = "auth"
	require.NoError(t, x.store.ReplaceSymbols(ctx, "auth/service.py", []*types.Symbol{login}))
	_, err := x.IndexSymbols(ctx, "auth/service.py", []byte(authSource), []*types.Symbol{login})
	require.NoError(t, err)

	render, err := types.NewSymbol("web/view.ts", "render", types.KindFunction, types.LangTypeScript, 1, 2)
	require.NoError(t, err)
	render.ServiceName = "web"
	require.NoError(t, x.store.ReplaceSymbols(ctx, "web/view.ts", []*types.Symbol{render}))
	_, err = x.IndexSymbols(ctx, "web/view.ts", []byte("function render() {\n  return html\n}"), []*types.Symbol{render})
	require.NoError(t, err)
}

func TestSearchReturnsRankedResults(t *testing.T) {
	store := newTestStore(t)
	emb := embedder.NewLocalProvider(32, 0)
	x := NewIndexer(store, store, emb)
	seedSearchChunks(t, x)

	s := NewSearcher(store, emb)
	results := s.Search(context.Background(), "user login", SearchOptions{})
	require.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
		assert.NotEmpty(t, r.ChunkID)
		assert.NotEmpty(t, r.Content)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	s := NewSearcher(newTestStore(t), embedder.NewLocalProvider(32, 0))
	results := s.Search(context.Background(), "", SearchOptions{})
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchFilters(t *testing.T) {
	store := newTestStore(t)
	emb := embedder.NewLocalProvider(32, 0)
	x := NewIndexer(store, store, emb)
	seedSearchChunks(t, x)

	s := NewSearcher(store, emb)
	ctx := context.Background()

	results := s.Search(ctx, "anything", SearchOptions{Language: string(types.LangPython)})
	require.Len(t, results, 1)
	assert.Equal(t, "auth/service.py", results[0].FilePath)

	results = s.Search(ctx, "anything", SearchOptions{ServiceName: "web"})
	require.Len(t, results, 1)
	assert.Equal(t, "web/view.ts", results[0].FilePath)

	results = s.Search(ctx, "anything", SearchOptions{
		Language:    string(types.LangPython),
		ServiceName: "web",
	})
	assert.Empty(t, results)
}

func TestSearchTopKLimit(t *testing.T) {
	store := newTestStore(t)
	emb := embedder.NewLocalProvider(32, 0)
	x := NewIndexer(store, store, emb)
	seedSearchChunks(t, x)

	s := NewSearcher(store, emb)
	results := s.Search(context.Background(), "anything", SearchOptions{TopK: 1})
	assert.Len(t, results, 1)
}

func TestSearchCachesResponses(t *testing.T) {
	store := newTestStore(t)
	emb := embedder.NewLocalProvider(32, 0)
	x := NewIndexer(store, store, emb)
	seedSearchChunks(t, x)

	s := NewSearcher(store, emb)
	ctx := context.Background()

	first := s.Search(ctx, "user login", SearchOptions{})
	require.NotEmpty(t, first)
	assert.Equal(t, 1, s.cache.Len())

	second := s.Search(ctx, "user login", SearchOptions{})
	assert.Equal(t, first, second)
	assert.Equal(t, 1, s.cache.Len())

	// Different options key separately.
	s.Search(ctx, "user login", SearchOptions{TopK: 1})
	assert.Equal(t, 2, s.cache.Len())

	s.InvalidateCache()
	assert.Equal(t, 0, s.cache.Len())
}

func TestSearchDoesNotCacheEmptyResults(t *testing.T) {
	store := newTestStore(t)
	emb := embedder.NewLocalProvider(32, 0)

	s := NewSearcher(store, emb)
	results := s.Search(context.Background(), "anything", SearchOptions{})
	assert.Empty(t, results)
	assert.Equal(t, 0, s.cache.Len())
}

func TestSearchEmbedderFailureDegrades(t *testing.T) {
	s := NewSearcher(newTestStore(t), failingEmbedder{})
	results := s.Search(context.Background(), "query", SearchOptions{})
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestDistanceToScore(t *testing.T) {
	assert.Equal(t, 1.0, distanceToScore(0))
	assert.Equal(t, 0.5, distanceToScore(0.5))
	assert.Equal(t, 0.0, distanceToScore(1.5))
	assert.Equal(t, 1.0, distanceToScore(-0.2))
}
