package semantic

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dhollis/codeatlas-mcp/internal/embedder"
	"github.com/dhollis/codeatlas-mcp/internal/storage"
	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// DefaultTopK is the result count used when a query does not specify one.
const DefaultTopK = 10

// MaxTopK bounds a single query.
const MaxTopK = 100

const (
	searchCacheSize = 1000
	searchCacheTTL  = 1 * time.Hour
)

// SearchOptions narrows a semantic query. Empty filter fields match
// everything; set fields are combined with AND.
type SearchOptions struct {
	TopK        int
	Language    string
	ServiceName string
}

// cacheEntry is a cached response with its expiration time.
type cacheEntry struct {
	results   []types.SearchResult
	expiresAt time.Time
}

// Searcher runs semantic queries against the vector store. Responses
// are cached by query hash with a TTL; only non-empty result sets are
// cached so a transient failure never pins an empty answer.
type Searcher struct {
	vectors  storage.VectorStore
	embedder embedder.Embedder
	cache    *lru.Cache[[32]byte, cacheEntry]
}

// NewSearcher creates a semantic searcher.
func NewSearcher(vectors storage.VectorStore, emb embedder.Embedder) *Searcher {
	cache, err := lru.New[[32]byte, cacheEntry](searchCacheSize)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(fmt.Sprintf("failed to create search cache: %v", err))
	}
	return &Searcher{vectors: vectors, embedder: emb, cache: cache}
}

// Search embeds the query and returns the nearest chunks, strictly
// score-descending. Scores are 1-distance clamped to [0, 1]. Embedding
// or store failures degrade to an empty result set rather than an
// error, since a search miss is recoverable and an indexing pipeline
// should never fail because search did.
func (s *Searcher) Search(ctx context.Context, query string, opts SearchOptions) []types.SearchResult {
	if query == "" {
		return []types.SearchResult{}
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	opts.TopK = topK

	key := queryHash(query, opts)
	if entry, ok := s.cache.Get(key); ok {
		if time.Now().Before(entry.expiresAt) {
			return append([]types.SearchResult(nil), entry.results...)
		}
		s.cache.Remove(key)
	}

	emb, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		log.Printf("search: failed to embed query: %v", err)
		return []types.SearchResult{}
	}

	var filter *storage.ChunkFilter
	if opts.Language != "" || opts.ServiceName != "" {
		filter = &storage.ChunkFilter{
			Language:    opts.Language,
			ServiceName: opts.ServiceName,
		}
	}

	matches, err := s.vectors.QueryNearest(ctx, emb.Vector, topK, filter)
	if err != nil {
		log.Printf("search: vector query failed: %v", err)
		return []types.SearchResult{}
	}

	results := make([]types.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, types.SearchResult{
			ChunkID:     m.Chunk.ID,
			FilePath:    m.Chunk.FilePath,
			Content:     m.Chunk.Content,
			Language:    m.Chunk.Language,
			ServiceName: m.Chunk.ServiceName,
			SymbolName:  m.Chunk.SymbolName,
			SymbolKind:  m.Chunk.SymbolKind,
			LineStart:   m.Chunk.LineStart,
			LineEnd:     m.Chunk.LineEnd,
			Score:       distanceToScore(m.Distance),
		})
	}

	if len(results) > 0 {
		s.cache.Add(key, cacheEntry{
			results:   append([]types.SearchResult(nil), results...),
			expiresAt: time.Now().Add(searchCacheTTL),
		})
	}
	return results
}

// InvalidateCache drops all cached responses. Callers that just
// re-indexed can use it to avoid serving stale hits for the TTL.
func (s *Searcher) InvalidateCache() {
	s.cache.Purge()
}

// queryHash keys the response cache on the query and every option that
// shapes the result set.
func queryHash(query string, opts SearchOptions) [32]byte {
	return sha256.Sum256([]byte(query + "\x00" + opts.Language + "\x00" + opts.ServiceName + "\x00" + strconv.Itoa(opts.TopK)))
}

// distanceToScore converts a cosine distance into a similarity score
// clamped to [0, 1].
func distanceToScore(distance float64) float64 {
	score := 1.0 - distance
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
