// Package driving provides interfaces consumed by inbound adapters
// (CLI, HTTP handlers, data-sync connectors).
package driving

import (
	"context"

	"github.com/lekesiz/netz-rag/internal/core/domain"
)

// AddOptions carries the descriptive fields for a new document.
// Caller-supplied Metadata keys are preserved; Title, Source and Type
// are merged over them.
type AddOptions struct {
	Title    string
	Source   string
	Type     string
	Metadata map[string]any
}

// RAGService is the sole entry point to the retrieval core. It hides
// the embedding/storage split behind a small set of operations.
type RAGService interface {
	// AddDocument embeds and stores one document, returning its
	// content-derived ID. Re-adding identical content returns the
	// same ID without growing storage. Empty or whitespace-only
	// content is rejected with domain.ErrInvalidInput.
	AddDocument(ctx context.Context, content string, opts AddOptions) (string, error)

	// AddKnowledgeBase flattens a nested category structure into
	// individual documents and returns how many were added.
	AddKnowledgeBase(ctx context.Context, kb map[string]any) (int, error)

	// Search returns up to k results ranked by descending similarity.
	// When filterType is non-empty, results are post-filtered on
	// metadata type, preserving rank order; fewer than k results may
	// come back.
	Search(ctx context.Context, query string, k int, filterType string) ([]domain.SearchResult, error)

	// ContextForQuery builds a newline-separated context block from
	// the most relevant snippets, bounded by an estimated token
	// budget (1 token ~ 4 characters).
	ContextForQuery(ctx context.Context, query string, maxTokens int) (string, error)

	// Delete removes documents from both stores. Unknown IDs are a
	// no-op.
	Delete(ctx context.Context, ids []string) error

	// Stats reports store totals for health and ops endpoints.
	Stats(ctx context.Context) (domain.Stats, error)
}
