// Package vector provides a persisted passage store with cosine similarity search.
package vector

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrDimensionMismatch is returned when a vector's dimension does not match the store.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// normEpsilon guards against division by zero when normalizing a zero vector.
const normEpsilon = 1e-8

// Match is a single search hit: the stored passage text and its cosine
// similarity to the query (higher is better, in [-1, 1]).
type Match struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Store holds (vector, text) passage pairs in memory and mirrors them to a
// single file. Add is append-only and rewrites the file synchronously; Search
// runs over an immutable snapshot, so concurrent reads never observe a
// half-appended state.
type Store struct {
	dimensions int
	path       string

	mu      sync.RWMutex
	vectors [][]float32
	texts   []string
}

// Open creates or loads the named store under dir. A store that has never
// been written starts empty; otherwise the persisted rows are loaded and the
// file's dimension must equal dimensions.
func Open(dir, name string, dimensions int) (*Store, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	s := &Store{
		dimensions: dimensions,
		path:       filepath.Join(dir, name+".idx"),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dimensions returns the embedding dimension fixed at creation time.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Count returns the number of stored passages.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.texts)
}

// Add appends passage rows and persists the whole store before returning.
// vectors and texts must have equal length and every vector must match the
// store dimension. An empty batch is a no-op. If persistence fails the
// in-memory state is left unchanged, so memory and disk never diverge.
func (s *Store) Add(ctx context.Context, vectors [][]float32, texts []string) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("vectors and texts length mismatch: %d vs %d", len(vectors), len(texts))
	}
	if len(vectors) == 0 {
		return nil
	}
	for i, vec := range vectors {
		if len(vec) != s.dimensions {
			return fmt.Errorf("%w: row %d has %d, store expects %d", ErrDimensionMismatch, i, len(vec), s.dimensions)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Build fresh slices instead of appending in place: readers holding the
	// old headers keep a consistent view, and a failed save needs no undo.
	newVectors := make([][]float32, 0, len(s.vectors)+len(vectors))
	newVectors = append(newVectors, s.vectors...)
	for _, vec := range vectors {
		row := make([]float32, s.dimensions)
		copy(row, vec)
		newVectors = append(newVectors, row)
	}
	newTexts := make([]string, 0, len(s.texts)+len(texts))
	newTexts = append(newTexts, s.texts...)
	newTexts = append(newTexts, texts...)

	if err := s.save(newVectors, newTexts); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}
	s.vectors = newVectors
	s.texts = newTexts
	return nil
}

// Search returns up to topK passages ordered by decreasing cosine similarity
// to query. Both query and rows are normalized at search time. An empty store
// returns an empty result.
func (s *Store) Search(ctx context.Context, query []float32, topK int) ([]Match, error) {
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d, store expects %d", ErrDimensionMismatch, len(query), s.dimensions)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	vectors, texts := s.vectors, s.texts
	s.mu.RUnlock()

	if topK <= 0 || len(texts) == 0 {
		return []Match{}, nil
	}

	qn := normalize(query)
	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(vectors))
	for i, vec := range vectors {
		scores[i] = scored{idx: i, score: dot(qn, normalize(vec))}
	}
	// Stable so equal scores keep insertion order across repeated calls.
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if topK > len(scores) {
		topK = len(scores)
	}
	matches := make([]Match, topK)
	for i := 0; i < topK; i++ {
		matches[i] = Match{Text: texts[scores[i].idx], Score: scores[i].score}
	}
	return matches, nil
}

func normalize(v []float32) []float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	inv := 1.0 / (math.Sqrt(sum) + normEpsilon)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x) * inv
	}
	return out
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// save writes the full store to disk: a temp file next to the target, then an
// atomic rename. Format: dimensions (4), count (4), then per row:
// textLen (4), text bytes, dimensions*4 vector bytes. Little endian.
func (s *Store) save(vectors [][]float32, texts []string) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	w := bufio.NewWriter(f)

	writeErr := func() error {
		if err := binary.Write(w, binary.LittleEndian, uint32(s.dimensions)); err != nil {
			return fmt.Errorf("write dimensions: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(texts))); err != nil {
			return fmt.Errorf("write count: %w", err)
		}
		for i, text := range texts {
			if err := binary.Write(w, binary.LittleEndian, uint32(len(text))); err != nil {
				return fmt.Errorf("write text len: %w", err)
			}
			if _, err := w.WriteString(text); err != nil {
				return fmt.Errorf("write text: %w", err)
			}
			if err := binary.Write(w, binary.LittleEndian, vectors[i]); err != nil {
				return fmt.Errorf("write vector: %w", err)
			}
		}
		return w.Flush()
	}()
	if writeErr != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return writeErr
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// load reads the store file into memory. A missing file leaves the store empty.
func (s *Store) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var dim, n uint32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != s.dimensions {
		return fmt.Errorf("%w: file has %d, store expects %d", ErrDimensionMismatch, dim, s.dimensions)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	vectors := make([][]float32, 0, n)
	texts := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		var textLen uint32
		if err := binary.Read(r, binary.LittleEndian, &textLen); err != nil {
			return fmt.Errorf("read text len: %w", err)
		}
		buf := make([]byte, textLen)
		if _, err := io.ReadFull(r, buf); err != nil {
			return fmt.Errorf("read text: %w", err)
		}
		vec := make([]float32, s.dimensions)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		texts = append(texts, string(buf))
		vectors = append(vectors, vec)
	}
	s.vectors = vectors
	s.texts = texts
	return nil
}
