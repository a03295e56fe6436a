// Package models defines core data structures for documents, chunks, and the chat API.
package models

import "time"

// Document represents an ingested source file with metadata.
type Document struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Category    string    `json:"category" db:"category"`
	SourcePath  string    `json:"source_path" db:"source_path"`
	SourceMtime int64     `json:"source_mtime" db:"source_mtime"`
	SourceSize  int64     `json:"source_size" db:"source_size"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentChunk represents one word-window slice of a document, the unit of retrieval.
type DocumentChunk struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Content    string    `json:"content" db:"content"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ChatRequest is the body of POST /api/v1/chat.
// Source selects evidence sources: "auto" (category policy decides, default),
// "local", "web", or "both".
type ChatRequest struct {
	Question string `json:"question"`
	Source   string `json:"source,omitempty"`
}

// ChatResponse is the answer with the evidence sources that contributed.
type ChatResponse struct {
	Answer      string   `json:"answer"`
	UsedSources []string `json:"used_sources"`
}
