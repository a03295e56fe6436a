// Package storage defines the persistence interface for the ingestion registry.
package storage

import (
	"context"

	"github.com/unihelp/sotay/internal/models"
)

// Storage records which source files have been ingested, with category
// metadata and the chunk rows each produced. The vector store remains the
// retrieval source of truth; the registry drives incremental sync and status
// reporting.
type Storage interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)

	BatchCreateChunks(ctx context.Context, chunks []*models.DocumentChunk) error
	GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.DocumentChunk, error)
	DeleteChunksByDocumentID(ctx context.Context, docID string) error

	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
