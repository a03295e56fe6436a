package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// tokenRe matches word tokens of two or more characters, Unicode-aware so
// Vietnamese text tokenizes the same as ASCII.
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}]+`)

// HashingEmbedder maps text to a fixed-dimension vector by hashing tokens
// into buckets and L2-normalizing the counts. Deterministic, no model, no
// network: the same text always yields the same unit-length vector, which is
// all cosine retrieval needs.
type HashingEmbedder struct {
	dimensions int
}

// NewHashingEmbedder returns a feature-hashing embedder of the given dimension.
func NewHashingEmbedder(dimensions int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = 512
	}
	return &HashingEmbedder{dimensions: dimensions}
}

// Embed returns the hashed token-count vector for text, L2-normalized.
// Text with no tokens yields a zero vector.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, e.dimensions)
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dimensions]++
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum > 0 {
		inv := float32(1.0 / math.Sqrt(sum))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

// EmbedBatch embeds each text; an empty input returns an empty matrix.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *HashingEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for HashingEmbedder.
func (e *HashingEmbedder) Close() error {
	return nil
}
