package embedder

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProviderDeterministic(t *testing.T) {
	p := NewLocalProvider(0, 0)
	ctx := context.Background()

	first, err := p.GenerateEmbedding(ctx, "def login(user):")
	require.NoError(t, err)
	assert.Equal(t, defaultLocalDimension, first.Dimension)
	assert.Len(t, first.Vector, defaultLocalDimension)
	assert.Equal(t, ProviderLocal, first.Provider)
	assert.Equal(t, "hash-v1", first.Model)

	// A fresh provider produces the same vector for the same text.
	second, err := NewLocalProvider(0, 0).GenerateEmbedding(ctx, "def login(user):")
	require.NoError(t, err)
	assert.Equal(t, first.Vector, second.Vector)

	other, err := p.GenerateEmbedding(ctx, "def logout(user):")
	require.NoError(t, err)
	assert.NotEqual(t, first.Vector, other.Vector)
}

func TestLocalProviderUnitNorm(t *testing.T) {
	p := NewLocalProvider(64, 0)
	emb, err := p.GenerateEmbedding(context.Background(), "some text")
	require.NoError(t, err)

	var sum float64
	for _, v := range emb.Vector {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestLocalProviderCacheHit(t *testing.T) {
	p := NewLocalProvider(32, 10)
	ctx := context.Background()

	first, err := p.GenerateEmbedding(ctx, "cached text")
	require.NoError(t, err)
	second, err := p.GenerateEmbedding(ctx, "cached text")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLocalProviderValidation(t *testing.T) {
	p := NewLocalProvider(0, 0)
	ctx := context.Background()

	_, err := p.GenerateEmbedding(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = p.GenerateBatch(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = p.GenerateBatch(ctx, make([]string, MaxBatchSize+1))
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestLocalProviderBatch(t *testing.T) {
	p := NewLocalProvider(16, 0)
	results, err := p.GenerateBatch(context.Background(), []string{"a", "b", "a"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, results[0].Vector, results[2].Vector)
	assert.NotEqual(t, results[0].Vector, results[1].Vector)
}

func TestComputeHash(t *testing.T) {
	assert.Equal(t, ComputeHash("abc"), ComputeHash("abc"))
	assert.NotEqual(t, ComputeHash("abc"), ComputeHash("abd"))
	assert.Len(t, ComputeHash("abc"), 64)
}

func TestNormalizeVector(t *testing.T) {
	out := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, out[0], 1e-6)
	assert.InDelta(t, 0.8, out[1], 1e-6)

	// Zero vectors pass through unchanged.
	zero := []float32{0, 0}
	assert.Equal(t, zero, NormalizeVector(zero))
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(2)
	c.Set("a", &Embedding{Hash: "a"})
	c.Set("b", &Embedding{Hash: "b"})
	c.Set("c", &Embedding{Hash: "c"})

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestRetryNonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	_, err := retryWithBackoff(context.Background(), func() (int, error) {
		calls++
		return 0, ErrEmptyText
	})
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Equal(t, 1, calls)
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	got, err := retryWithBackoff(context.Background(), func() (string, error) {
		calls++
		if calls < 2 {
			return "", ErrProviderFailed
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
}

func TestRetryRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := retryWithBackoff(ctx, func() (int, error) {
		calls++
		return 0, ErrProviderFailed
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestFactorySelectsProvider(t *testing.T) {
	emb, err := New(Config{Provider: ProviderLocal, Dimension: 128})
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, emb.Provider())
	assert.Equal(t, 128, emb.Dimension())

	emb, err = New(Config{})
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, emb.Provider())

	_, err = New(Config{Provider: "cohere"})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = New(Config{Provider: ProviderOpenAI})
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestFactoryOpenAIDefaults(t *testing.T) {
	emb, err := New(Config{Provider: ProviderOpenAI, APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, emb.Provider())
	assert.Equal(t, defaultOpenAIModel, emb.Model())
	assert.Equal(t, defaultOpenAIDimension, emb.Dimension())
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("CODEATLAS_EMBEDDING_PROVIDER", "local")
	t.Setenv("CODEATLAS_EMBEDDING_DIMENSION", "64")
	t.Setenv("OPENAI_API_KEY", "")

	emb, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, emb.Provider())
	assert.Equal(t, 64, emb.Dimension())
}
