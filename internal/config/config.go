// Package config provides configuration loading and structs for the Sotay server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	WebSearch WebSearchConfig `yaml:"web_search"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the registry database and the vector store.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	VectorStoreDir  string `yaml:"vector_store_dir"`
	VectorStoreName string `yaml:"vector_store_name"`
}

// EmbeddingConfig holds embedder settings.
// Provider is "hashing" (deterministic local feature hashing) or "ollama".
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Dimensions int    `yaml:"dimensions"`
	Model      string `yaml:"model"`
	CacheSize  int    `yaml:"cache_size"`
}

// LLMConfig holds chat model settings for the Ollama backend.
type LLMConfig struct {
	BaseURL        string `yaml:"base_url"`
	ChatModel      string `yaml:"chat_model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// WebSearchConfig holds Tavily web search settings. APIKey is usually set
// through the TAVILY_API_KEY environment variable rather than the file.
type WebSearchConfig struct {
	APIKey     string `yaml:"api_key"`
	MaxResults int    `yaml:"max_results"`
}

// RetrievalConfig holds per-category retrieval parameters.
type RetrievalConfig struct {
	ScheduleTopK int     `yaml:"schedule_top_k"`
	LocalTopK    int     `yaml:"local_top_k"`
	GeneralTopK  int     `yaml:"general_top_k"`
	MinScore     float64 `yaml:"min_score"`
	Classifier   string  `yaml:"classifier"` // "model" or "rules"
}

// IngestConfig holds chunking and ingestion settings.
type IngestConfig struct {
	RawDir       string   `yaml:"raw_dir"`
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	BatchSize    int      `yaml:"batch_size"`
	Extensions   []string `yaml:"extensions"`
	Watch        bool     `yaml:"watch"`
}

// Load reads and parses the config file at path, applies .env and environment
// overrides, expands paths, and fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// .env next to the config file, if present. Missing file is fine.
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))
	applyEnv(&cfg)

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorStoreDir = expandPath(cfg.Storage.VectorStoreDir, configDir)
	if cfg.Ingest.RawDir != "" {
		cfg.Ingest.RawDir = expandPath(cfg.Ingest.RawDir, configDir)
	}

	return &cfg, nil
}

// applyEnv overrides config values from environment variables. Environment
// wins over the file so deployments can keep secrets out of config.yaml.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_CHAT_MODEL"); v != "" {
		cfg.LLM.ChatModel = v
	}
	if v := os.Getenv("OLLAMA_EMBED_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		cfg.WebSearch.APIKey = v
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
