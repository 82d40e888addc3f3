package driven

import (
	"context"

	"github.com/lekesiz/netz-rag/internal/core/domain"
)

// MetadataStore keeps a queryable, non-vector record of each document
// for administrative listing and statistics. It is never consulted for
// ranking. Backed by SQLite.
type MetadataStore interface {
	// Record upserts a document record by ID.
	Record(ctx context.Context, rec domain.DocumentRecord) error

	// Delete removes records by ID. Unknown IDs are a no-op.
	Delete(ctx context.Context, ids []string) error

	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (*domain.DocumentRecord, error)

	// List returns records ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]domain.DocumentRecord, error)

	// CountBy groups record counts by the given field
	// ("doc_type" or "source").
	CountBy(ctx context.Context, field string) (map[string]int, error)

	// TotalCount returns the number of records.
	TotalCount(ctx context.Context) (int, error)
}
