package driven

import (
	"context"

	"github.com/lekesiz/netz-rag/internal/core/domain"
)

// VectorStore persists documents and answers nearest-neighbour queries.
//
// Two backends conform to this contract: an in-process array store with
// a full linear scan, and Qdrant. Which one runs is a deployment-time
// configuration choice invisible to callers.
type VectorStore interface {
	// Add upserts documents by ID. Documents arrive with their
	// Embedding populated. An empty slice is a no-op.
	Add(ctx context.Context, docs []domain.Document) error

	// Search finds the k stored documents most similar to the query
	// vector, ordered by descending score. An empty store returns an
	// empty slice; k larger than the corpus returns everything.
	Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error)

	// Delete removes documents by ID. Unknown IDs are a no-op.
	Delete(ctx context.Context, ids []string) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Name identifies the backend ("array", "qdrant") for stats.
	Name() string

	// Close releases resources.
	Close() error
}
