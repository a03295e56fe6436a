package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/db/documents.db"
	}
	if cfg.Storage.VectorStoreDir == "" {
		cfg.Storage.VectorStoreDir = "./data/vector_store"
	}
	if cfg.Storage.VectorStoreName == "" {
		cfg.Storage.VectorStoreName = "default"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "hashing"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 512
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "http://localhost:11434"
	}
	if cfg.LLM.ChatModel == "" {
		cfg.LLM.ChatModel = "llama3"
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 300
	}
	if cfg.WebSearch.MaxResults == 0 {
		cfg.WebSearch.MaxResults = 3
	}
	if cfg.Retrieval.ScheduleTopK == 0 {
		cfg.Retrieval.ScheduleTopK = 20
	}
	if cfg.Retrieval.LocalTopK == 0 {
		cfg.Retrieval.LocalTopK = 5
	}
	if cfg.Retrieval.GeneralTopK == 0 {
		cfg.Retrieval.GeneralTopK = 3
	}
	if cfg.Retrieval.MinScore == 0 {
		cfg.Retrieval.MinScore = 0.20
	}
	if cfg.Retrieval.Classifier == "" {
		cfg.Retrieval.Classifier = "model"
	}
	if cfg.Ingest.RawDir == "" {
		cfg.Ingest.RawDir = "./data/raw"
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 800
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 200
	}
	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 32
	}
	if cfg.Ingest.Extensions == nil {
		cfg.Ingest.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".csv", ".xlsx"}
	}
}
