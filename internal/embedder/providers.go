package embedder

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAIProvider generates embeddings via the OpenAI embeddings API or
// any API-compatible endpoint.
type OpenAIProvider struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	client    *http.Client
	cache     *Cache
}

// OpenAIConfig configures an OpenAI-compatible provider.
type OpenAIConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	Dimension int
	CacheSize int
}

const (
	defaultOpenAIModel     = "text-embedding-3-small"
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultOpenAIDimension = 1536
)

// NewOpenAIProvider creates an OpenAI-compatible embedding provider.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = defaultOpenAIDimension
	}
	return &OpenAIProvider{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		baseURL:   cfg.BaseURL,
		dimension: cfg.Dimension,
		client:    &http.Client{Timeout: 60 * time.Second},
		cache:     NewCache(cfg.CacheSize),
	}, nil
}

type openAIRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type openAIResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// GenerateEmbedding generates a single embedding.
func (p *OpenAIProvider) GenerateEmbedding(ctx context.Context, text string) (*Embedding, error) {
	results, err := p.GenerateBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// GenerateBatch generates embeddings for multiple texts in one API call.
// Cached texts are served from the LRU without a request.
func (p *OpenAIProvider) GenerateBatch(ctx context.Context, texts []string) ([]*Embedding, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyText
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d texts (max %d)", ErrBatchTooLarge, len(texts), MaxBatchSize)
	}
	for _, t := range texts {
		if t == "" {
			return nil, ErrEmptyText
		}
	}

	results := make([]*Embedding, len(texts))
	var missing []string
	var missingIdx []int
	for i, t := range texts {
		hash := ComputeHash(t)
		if emb, ok := p.cache.Get(hash); ok {
			results[i] = emb
			continue
		}
		missing = append(missing, t)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return results, nil
	}

	resp, err := retryWithBackoff(ctx, func() (*openAIResponse, error) {
		return p.request(ctx, missing)
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(missing) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrProviderFailed, len(missing), len(resp.Data))
	}

	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(missing) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", ErrProviderFailed, item.Index)
		}
		text := missing[item.Index]
		hash := ComputeHash(text)
		emb := &Embedding{
			Vector:    NormalizeVector(item.Embedding),
			Dimension: len(item.Embedding),
			Provider:  ProviderOpenAI,
			Model:     p.model,
			Hash:      hash,
		}
		p.cache.Set(hash, emb)
		results[missingIdx[item.Index]] = emb
	}
	return results, nil
}

func (p *OpenAIProvider) request(ctx context.Context, texts []string) (*openAIResponse, error) {
	body, err := json.Marshal(openAIRequest{Input: texts, Model: p.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	httpResp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrProviderFailed, err)
	}

	var resp openAIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %v", ErrProviderFailed, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		msg := httpResp.Status
		if resp.Error != nil {
			msg = resp.Error.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrProviderFailed, msg)
	}
	return &resp, nil
}

// Dimension returns the embedding dimension.
func (p *OpenAIProvider) Dimension() int { return p.dimension }

// Provider returns the provider name.
func (p *OpenAIProvider) Provider() string { return ProviderOpenAI }

// Model returns the model name.
func (p *OpenAIProvider) Model() string { return p.model }

// Close releases resources.
func (p *OpenAIProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// LocalProvider generates deterministic hash-based embeddings with no
// external service. Quality is far below a real model but results are
// stable, which makes it suitable for tests and offline use.
type LocalProvider struct {
	dimension int
	cache     *Cache
}

const defaultLocalDimension = 384

// NewLocalProvider creates a deterministic local embedding provider.
func NewLocalProvider(dimension, cacheSize int) *LocalProvider {
	if dimension <= 0 {
		dimension = defaultLocalDimension
	}
	return &LocalProvider{
		dimension: dimension,
		cache:     NewCache(cacheSize),
	}
}

// GenerateEmbedding generates a deterministic embedding from the text hash.
func (p *LocalProvider) GenerateEmbedding(_ context.Context, text string) (*Embedding, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	hash := ComputeHash(text)
	if emb, ok := p.cache.Get(hash); ok {
		return emb, nil
	}

	vector := make([]float32, p.dimension)
	seed := sha256.Sum256([]byte(text))
	state := seed[:]
	for i := 0; i < p.dimension; i += 8 {
		next := sha256.Sum256(state)
		state = next[:]
		for j := 0; j < 8 && i+j < p.dimension; j++ {
			bits := binary.LittleEndian.Uint32(state[j*4 : j*4+4])
			vector[i+j] = float32(bits)/float32(1<<31) - 1.0
		}
	}

	emb := &Embedding{
		Vector:    NormalizeVector(vector),
		Dimension: p.dimension,
		Provider:  ProviderLocal,
		Model:     "hash-v1",
		Hash:      hash,
	}
	p.cache.Set(hash, emb)
	return emb, nil
}

// GenerateBatch generates embeddings for multiple texts.
func (p *LocalProvider) GenerateBatch(ctx context.Context, texts []string) ([]*Embedding, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyText
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d texts (max %d)", ErrBatchTooLarge, len(texts), MaxBatchSize)
	}
	results := make([]*Embedding, len(texts))
	for i, t := range texts {
		emb, err := p.GenerateEmbedding(ctx, t)
		if err != nil {
			return nil, err
		}
		results[i] = emb
	}
	return results, nil
}

// Dimension returns the embedding dimension.
func (p *LocalProvider) Dimension() int { return p.dimension }

// Provider returns the provider name.
func (p *LocalProvider) Provider() string { return ProviderLocal }

// Model returns the model name.
func (p *LocalProvider) Model() string { return "hash-v1" }

// Close releases resources.
func (p *LocalProvider) Close() error { return nil }
