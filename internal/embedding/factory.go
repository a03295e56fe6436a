package embedding

import (
	"fmt"

	"github.com/unihelp/sotay/internal/config"
)

// NewEmbedder creates the embedder selected by cfg.Provider: "hashing"
// (default) or "ollama". The result is wrapped with an LRU cache when
// cfg.CacheSize is positive.
func NewEmbedder(cfg *config.EmbeddingConfig, baseURL string) (Embedder, error) {
	var inner Embedder
	switch cfg.Provider {
	case "hashing", "":
		inner = NewHashingEmbedder(cfg.Dimensions)
	case "ollama":
		if cfg.Model == "" {
			return nil, fmt.Errorf("ollama embedding provider requires a model")
		}
		inner = NewOllamaEmbedder(baseURL, cfg.Model, cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: hashing, ollama)", cfg.Provider)
	}
	if cfg.CacheSize > 0 {
		return NewCachedEmbedder(inner, cfg.CacheSize), nil
	}
	return inner, nil
}
