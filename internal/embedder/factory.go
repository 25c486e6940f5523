package embedder

import (
	"fmt"
	"os"
	"strconv"
)

// Config selects and configures an embedding provider.
type Config struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string
	Dimension int
	CacheSize int
}

// New creates an embedder from configuration.
func New(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BaseURL:   cfg.BaseURL,
			Dimension: cfg.Dimension,
			CacheSize: cfg.CacheSize,
		})
	case ProviderLocal, "":
		return NewLocalProvider(cfg.Dimension, cfg.CacheSize), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// NewFromEnv creates an embedder from environment variables.
//
// CODEATLAS_EMBEDDING_PROVIDER selects the provider ("openai" or
// "local"). When unset, "openai" is used if OPENAI_API_KEY is present,
// otherwise "local".
func NewFromEnv() (Embedder, error) {
	cfg := Config{
		Provider:  os.Getenv("CODEATLAS_EMBEDDING_PROVIDER"),
		APIKey:    os.Getenv("OPENAI_API_KEY"),
		Model:     os.Getenv("CODEATLAS_EMBEDDING_MODEL"),
		BaseURL:   os.Getenv("CODEATLAS_EMBEDDING_BASE_URL"),
		Dimension: envInt("CODEATLAS_EMBEDDING_DIMENSION", 0),
		CacheSize: envInt("CODEATLAS_EMBEDDING_CACHE_SIZE", 0),
	}
	if cfg.Provider == "" {
		if cfg.APIKey != "" {
			cfg.Provider = ProviderOpenAI
		} else {
			cfg.Provider = ProviderLocal
		}
	}
	return New(cfg)
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
