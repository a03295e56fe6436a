package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unihelp/sotay/internal/config"
	"github.com/unihelp/sotay/internal/embedding"
	"github.com/unihelp/sotay/internal/extract"
	"github.com/unihelp/sotay/internal/models"
	"github.com/unihelp/sotay/internal/storage"
	"github.com/unihelp/sotay/internal/vector"
)

// Ingester loads files, chunks them, embeds the chunks, and writes them to
// the vector store and the document registry.
type Ingester struct {
	storage   storage.Storage
	embedder  embedding.Embedder
	store     *vector.Store
	extractor *extract.Extractor
	chunker   *Chunker
	cfg       *config.IngestConfig
	logger    *zap.Logger
}

// NewIngester creates an ingester with the given dependencies.
func NewIngester(
	st storage.Storage,
	embedder embedding.Embedder,
	store *vector.Store,
	extractor *extract.Extractor,
	cfg *config.IngestConfig,
	logger *zap.Logger,
) *Ingester {
	return &Ingester{
		storage:   st,
		embedder:  embedder,
		store:     store,
		extractor: extractor,
		chunker:   NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		cfg:       cfg,
		logger:    logger,
	}
}

// fileDocID derives a stable document ID from the absolute file path, so
// re-ingesting the same file updates the same registry row.
func fileDocID(absPath string) string {
	sum := sha1.Sum([]byte(absPath))
	return "file_" + hex.EncodeToString(sum[:])[:16]
}

// IngestFile reads a single file and ingests it. Files with unsupported
// extensions and files already ingested with the same mtime and size are
// skipped without error.
func (ing *Ingester) IngestFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(ing.cfg.Extensions) > 0 && !extensionAllowed(ext, ing.cfg.Extensions) {
		return nil
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", absPath)
	}
	docID := fileDocID(absPath)
	if ing.unchanged(ctx, docID, absPath, info) {
		ing.logger.Debug("skipping unchanged file", zap.String("path", absPath))
		return nil
	}

	text, err := ing.extractor.Extract(absPath)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupported) {
			ing.logger.Warn("skipping unsupported file", zap.String("path", absPath))
			return nil
		}
		return fmt.Errorf("extract content: %w", err)
	}
	text = Preprocess(text)
	if text == "" {
		ing.logger.Warn("skipping empty file", zap.String("path", absPath))
		return nil
	}

	chunks := ing.chunker.Chunk(docID, text)
	if err := ing.embedAndAdd(ctx, chunks); err != nil {
		return err
	}

	// Replace the registry rows for this path. The vector store is
	// append-only, so stale vectors for an updated file remain until the
	// store is rebuilt from scratch.
	_ = ing.storage.DeleteChunksByDocumentID(ctx, docID)
	_ = ing.storage.DeleteDocument(ctx, docID)
	now := time.Now()
	doc := &models.Document{
		ID:          docID,
		Title:       filepath.Base(absPath),
		Category:    string(CategoryForFile(absPath)),
		SourcePath:  absPath,
		SourceMtime: info.ModTime().UnixNano(),
		SourceSize:  info.Size(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := ing.storage.CreateDocument(ctx, doc); err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	if err := ing.storage.BatchCreateChunks(ctx, chunks); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	ing.logger.Info("file ingested",
		zap.String("path", absPath),
		zap.String("category", doc.Category),
		zap.Int("chunks", len(chunks)))
	return nil
}

// embedAndAdd embeds chunk contents in batches and appends them to the
// vector store.
func (ing *Ingester) embedAndAdd(ctx context.Context, chunks []*models.DocumentChunk) error {
	batchSize := ing.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-i)
		for _, ch := range chunks[i:end] {
			texts = append(texts, ch.Content)
		}
		vectors, err := ing.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("generate embeddings: %w", err)
		}
		if err := ing.store.Add(ctx, vectors, texts); err != nil {
			return fmt.Errorf("index vectors: %w", err)
		}
	}
	return nil
}

// unchanged reports whether the registry already has this document with the
// same source path, mtime, and size.
func (ing *Ingester) unchanged(ctx context.Context, docID, absPath string, info os.FileInfo) bool {
	doc, err := ing.storage.GetDocument(ctx, docID)
	if err != nil {
		return false
	}
	return doc.SourcePath == absPath &&
		doc.SourceMtime == info.ModTime().UnixNano() &&
		doc.SourceSize == info.Size()
}

// IngestDirectory walks dir recursively and ingests each regular file with an
// allowed extension. Returns the number of files visited and the first error
// encountered.
func (ing *Ingester) IngestDirectory(ctx context.Context, dir string) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(ing.cfg.Extensions) > 0 && !extensionAllowed(ext, ing.cfg.Extensions) {
			return nil
		}
		// Resolve symlinks so only regular files are ingested.
		finfo, statErr := os.Stat(path)
		if statErr != nil {
			return nil
		}
		if !finfo.Mode().IsRegular() {
			return nil
		}
		if ingestErr := ing.IngestFile(ctx, path); ingestErr != nil {
			return ingestErr
		}
		n++
		return nil
	})
	return n, err
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
