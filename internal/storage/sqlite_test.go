package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/unihelp/sotay/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStorage_DocumentRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	doc := &models.Document{
		ID:          "doc-1",
		Title:       "thoi_khoa_bieu.xlsx",
		Category:    "SCHEDULE",
		SourcePath:  "/data/raw/thoi_khoa_bieu.xlsx",
		SourceMtime: 123456789,
		SourceSize:  4096,
	}
	if err := s.CreateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetDocument(ctx, "doc-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Category != "SCHEDULE" || got.SourceMtime != 123456789 || got.SourceSize != 4096 {
		t.Errorf("got %+v", got)
	}

	n, err := s.CountDocuments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("CountDocuments=%d", n)
	}
}

func TestSQLiteStorage_GetMissingDocument(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.GetDocument(context.Background(), "nope"); err == nil {
		t.Error("expected error for missing document")
	}
}

func TestSQLiteStorage_Chunks(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	doc := &models.Document{ID: "doc-1", Category: "TUITION", SourcePath: "/x"}
	if err := s.CreateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}
	chunks := []*models.DocumentChunk{
		{ID: "c0", DocumentID: "doc-1", Content: "học phí kỳ 1", ChunkIndex: 0},
		{ID: "c1", DocumentID: "doc-1", Content: "học phí kỳ 2", ChunkIndex: 1},
	}
	if err := s.BatchCreateChunks(ctx, chunks); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetChunksByDocumentID(ctx, "doc-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ChunkIndex != 0 || got[1].Content != "học phí kỳ 2" {
		t.Errorf("got %+v", got)
	}

	n, _ := s.CountChunks(ctx)
	if n != 2 {
		t.Errorf("CountChunks=%d", n)
	}

	if err := s.DeleteChunksByDocumentID(ctx, "doc-1"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteDocument(ctx, "doc-1"); err != nil {
		t.Fatal(err)
	}
	n, _ = s.CountChunks(ctx)
	if n != 0 {
		t.Errorf("chunks remain after delete: %d", n)
	}
}
