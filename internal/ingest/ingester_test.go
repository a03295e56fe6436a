package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/unihelp/sotay/internal/classify"
	"github.com/unihelp/sotay/internal/config"
	"github.com/unihelp/sotay/internal/embedding"
	"github.com/unihelp/sotay/internal/extract"
	"github.com/unihelp/sotay/internal/storage"
	"github.com/unihelp/sotay/internal/vector"
)

func TestCategoryForFile(t *testing.T) {
	cases := []struct {
		path string
		want classify.Category
	}{
		{"/data/raw/thoi_khoa_bieu.xlsx", classify.CategorySchedule},
		{"/data/raw/TKB_hoc_ky_2.csv", classify.CategorySchedule},
		{"/data/raw/hoc_phi.pdf", classify.CategoryTuition},
		{"/data/raw/quy_che_dao_tao.pdf", classify.CategoryRegulation},
		{"/data/raw/noi_quy_ky_tuc_xa.docx", classify.CategoryRegulation},
		{"/data/raw/so_tay_sinh_vien.pdf", classify.CategoryGeneral},
		{"/data/raw/gioi_thieu_truong.txt", classify.CategoryGeneral},
	}
	for _, tc := range cases {
		if got := CategoryForFile(tc.path); got != tc.want {
			t.Errorf("CategoryForFile(%q) = %s, want %s", tc.path, got, tc.want)
		}
	}
}

func newTestIngester(t *testing.T) (*Ingester, storage.Storage, *vector.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := storage.NewSQLiteStorage(filepath.Join(dir, "registry.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })
	store, err := vector.Open(dir, "default", 64)
	if err != nil {
		t.Fatal(err)
	}
	embedder := embedding.NewHashingEmbedder(64)
	cfg := &config.IngestConfig{
		ChunkSize:    10,
		ChunkOverlap: 2,
		BatchSize:    4,
		Extensions:   []string{".txt", ".md", ".csv"},
	}
	ing := NewIngester(st, embedder, store, extract.NewExtractor(), cfg, zap.NewNop())
	return ing, st, store
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIngester_IngestFile(t *testing.T) {
	ing, st, store := newTestIngester(t)
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFile(t, dir, "hoc_phi.txt", "Học phí học kỳ một năm học 2025 là 12 triệu đồng mỗi sinh viên.")

	if err := ing.IngestFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	docs, _ := st.CountDocuments(ctx)
	if docs != 1 {
		t.Errorf("CountDocuments=%d", docs)
	}
	chunks, _ := st.CountChunks(ctx)
	if chunks == 0 {
		t.Error("no chunks stored")
	}
	if store.Count() != int(chunks) {
		t.Errorf("vector count %d != chunk count %d", store.Count(), chunks)
	}

	abs, _ := filepath.Abs(path)
	doc, err := st.GetDocument(ctx, fileDocID(abs))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Category != string(classify.CategoryTuition) {
		t.Errorf("category = %s", doc.Category)
	}
}

func TestIngester_SkipUnchanged(t *testing.T) {
	ing, _, store := newTestIngester(t)
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFile(t, dir, "note.txt", "Nội dung thử nghiệm cho việc bỏ qua file không đổi.")

	if err := ing.IngestFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	count := store.Count()
	if err := ing.IngestFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	if store.Count() != count {
		t.Errorf("unchanged file was re-ingested: %d -> %d", count, store.Count())
	}
}

func TestIngester_SkipUnsupportedExtension(t *testing.T) {
	ing, st, _ := newTestIngester(t)
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFile(t, dir, "image.png", "not text")

	if err := ing.IngestFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	docs, _ := st.CountDocuments(ctx)
	if docs != 0 {
		t.Errorf("unsupported file was ingested")
	}
}

func TestIngester_IngestDirectory(t *testing.T) {
	ing, st, _ := newTestIngester(t)
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "Quy chế đào tạo tín chỉ của trường.")
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "b.md", "Giới thiệu chung về trường đại học.")
	writeFile(t, dir, "skip.bin", "binary")

	n, err := ing.IngestDirectory(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("visited %d files, want 2", n)
	}
	docs, _ := st.CountDocuments(ctx)
	if docs != 2 {
		t.Errorf("CountDocuments=%d", docs)
	}
}

func TestIngester_EmptyFileSkipped(t *testing.T) {
	ing, st, _ := newTestIngester(t)
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", "   \n\t ")

	if err := ing.IngestFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	docs, _ := st.CountDocuments(ctx)
	if docs != 0 {
		t.Error("empty file was ingested")
	}
}
