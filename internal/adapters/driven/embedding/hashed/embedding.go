// Package hashed provides a deterministic, dependency-free embedding
// service using a hashed bag-of-words scheme. Each token is hashed into
// one of a fixed number of buckets and weighted by inverse position,
// then the vector is L2-normalised so dot product equals cosine
// similarity. It trades semantic quality for zero external dependencies
// and bit-exact determinism.
package hashed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/lekesiz/netz-rag/internal/core/domain"
	"github.com/lekesiz/netz-rag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService generates hashed bag-of-words embeddings.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hashed embedder. If dimensions is zero,
// the system-wide default is used.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = domain.EmbeddingDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed generates the embedding for the given text. Input that
// tokenises to nothing yields the zero vector, never an error.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dimensions)

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return vec, nil
	}

	for i, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		bucket := int(h.Sum32() % uint32(s.dimensions))
		// Earlier tokens weigh more.
		vec[bucket] += float32(1.0 / float64(i+1))
	}

	normalize(vec)
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding scheme.
func (s *EmbeddingService) ModelName() string {
	return "hashed-bow"
}

// Close releases resources. The hashed embedder holds none.
func (s *EmbeddingService) Close() error {
	return nil
}

// tokenize splits text into lowercase runs of letters and digits.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalize scales vec to unit L2 norm in place. The zero vector is
// left untouched.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}
