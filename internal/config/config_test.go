package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "./data/registry.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  host: localhost\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Embedding.Provider != "hashing" || cfg.Embedding.Dimensions != 512 {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if cfg.Retrieval.ScheduleTopK != 20 || cfg.Retrieval.LocalTopK != 5 || cfg.Retrieval.GeneralTopK != 3 {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.MinScore != 0.20 {
		t.Errorf("min_score = %f", cfg.Retrieval.MinScore)
	}
	if cfg.Ingest.ChunkSize != 800 || cfg.Ingest.ChunkOverlap != 200 || cfg.Ingest.BatchSize != 32 {
		t.Errorf("ingest = %+v", cfg.Ingest)
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  database_path: "./data/registry.db"
  vector_store_dir: "./data/vectors"
ingest:
  raw_dir: "./data/raw"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "data", "registry.db")
	if cfg.Storage.DatabasePath != want {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, want)
	}
	if !strings.HasPrefix(cfg.Ingest.RawDir, dir) {
		t.Errorf("raw_dir = %s not under %s", cfg.Ingest.RawDir, dir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
llm:
  base_url: "http://localhost:11434"
web_search:
  api_key: ""
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.BaseURL != "http://ollama:11434" {
		t.Errorf("base_url = %s", cfg.LLM.BaseURL)
	}
	if cfg.WebSearch.APIKey != "tvly-test" {
		t.Errorf("api_key = %s", cfg.WebSearch.APIKey)
	}
}

func TestLoad_DotEnvNextToConfig(t *testing.T) {
	dir := t.TempDir()
	// godotenv does not override variables already set in the environment.
	t.Setenv("OLLAMA_CHAT_MODEL", "")
	os.Unsetenv("OLLAMA_CHAT_MODEL")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OLLAMA_CHAT_MODEL=qwen2\n"), 0600); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: false\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.ChatModel != "qwen2" {
		t.Errorf("chat_model = %s", cfg.LLM.ChatModel)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
