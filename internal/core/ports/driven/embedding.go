// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations must be deterministic: the same input text always
// produces the same vector. Vectors are L2-normalised so dot-product
// similarity equals cosine similarity; input that reduces to nothing
// yields the zero vector rather than an error.
//
// Implementations may include:
//   - hashed bag-of-words (default, no external dependency)
//   - Ollama-served models (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. Equivalent
	// to mapping Embed over the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	// This must match the vector store configuration.
	Dimensions() int

	// ModelName returns the name of the embedding scheme being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
