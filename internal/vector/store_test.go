package vector

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestStore_AddSearch(t *testing.T) {
	s, err := Open(t.TempDir(), "default", 3)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	vecs := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	texts := []string{"a", "b", "c"}
	if err := s.Add(ctx, vecs, texts); err != nil {
		t.Fatal(err)
	}
	if s.Count() != 3 {
		t.Errorf("Count=%d", s.Count())
	}

	matches, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Text != "a" {
		t.Errorf("top match should be a, got %s", matches[0].Text)
	}
	if matches[0].Score < matches[1].Score {
		t.Errorf("matches not ordered by decreasing score: %v", matches)
	}
	if math.Abs(matches[0].Score-1.0) > 0.01 {
		t.Errorf("self-similarity should be near 1, got %f", matches[0].Score)
	}
}

func TestStore_EmptySearch(t *testing.T) {
	s, err := Open(t.TempDir(), "default", 4)
	if err != nil {
		t.Fatal(err)
	}
	matches, err := s.Search(context.Background(), []float32{1, 0, 0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("empty store should return no matches, got %d", len(matches))
	}
}

func TestStore_TopKBounds(t *testing.T) {
	s, _ := Open(t.TempDir(), "default", 2)
	ctx := context.Background()
	_ = s.Add(ctx, [][]float32{{1, 0}, {0, 1}}, []string{"x", "y"})

	matches, err := s.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Errorf("topK larger than count should return count matches, got %d", len(matches))
	}
	matches, _ = s.Search(ctx, []float32{1, 0}, 0)
	if len(matches) != 0 {
		t.Errorf("topK 0 should return no matches, got %d", len(matches))
	}
}

func TestStore_DimensionMismatch(t *testing.T) {
	s, _ := Open(t.TempDir(), "default", 3)
	ctx := context.Background()

	err := s.Add(ctx, [][]float32{{1, 0}}, []string{"short"})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("failed Add must not mutate the store, Count=%d", s.Count())
	}

	if _, err := s.Search(ctx, []float32{1, 0}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on query, got %v", err)
	}
}

func TestStore_LengthMismatch(t *testing.T) {
	s, _ := Open(t.TempDir(), "default", 2)
	if err := s.Add(context.Background(), [][]float32{{1, 0}}, []string{"a", "b"}); err == nil {
		t.Error("expected error for vectors/texts length mismatch")
	}
}

func TestStore_EmptyBatchNoop(t *testing.T) {
	s, _ := Open(t.TempDir(), "default", 2)
	if err := s.Add(context.Background(), nil, nil); err != nil {
		t.Fatalf("empty batch should be a no-op, got %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("Count=%d", s.Count())
	}
}

func TestStore_PersistReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := Open(dir, "default", 3)
	if err != nil {
		t.Fatal(err)
	}
	vecs := [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	texts := []string{"học phí", "quy chế", "thời khóa biểu tuần 15"}
	if err := s1.Add(ctx, vecs, texts); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(dir, "default", 3)
	if err != nil {
		t.Fatal(err)
	}
	if s2.Count() != 3 {
		t.Fatalf("reloaded Count=%d", s2.Count())
	}
	// Same order, same vectors: inserted texts come back at rank 0 for their own vector.
	for i, vec := range vecs {
		matches, err := s2.Search(ctx, vec, 1)
		if err != nil {
			t.Fatal(err)
		}
		if matches[0].Text != texts[i] {
			t.Errorf("row %d: got %q, want %q", i, matches[0].Text, texts[i])
		}
	}
}

func TestStore_ReloadDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	s1, _ := Open(dir, "default", 2)
	_ = s1.Add(context.Background(), [][]float32{{1, 0}}, []string{"a"})

	if _, err := Open(dir, "default", 3); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on reload, got %v", err)
	}
}

func TestStore_AppendGrowsCount(t *testing.T) {
	s, _ := Open(t.TempDir(), "default", 2)
	ctx := context.Background()
	_ = s.Add(ctx, [][]float32{{1, 0}}, []string{"one"})
	before := s.Count()
	if err := s.Add(ctx, [][]float32{{0, 1}, {1, 1}}, []string{"two", "three"}); err != nil {
		t.Fatal(err)
	}
	if s.Count() != before+2 {
		t.Errorf("Count=%d, want %d", s.Count(), before+2)
	}
}
