// Package services implements the core application services behind the
// driving ports.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lekesiz/netz-rag/internal/core/domain"
	"github.com/lekesiz/netz-rag/internal/core/ports/driven"
	"github.com/lekesiz/netz-rag/internal/core/ports/driving"
	"github.com/lekesiz/netz-rag/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

const (
	// DefaultSearchLimit is used when callers pass k <= 0.
	DefaultSearchLimit = 5

	// contextCandidates is how many documents a context build considers
	// before the token budget cuts them off.
	contextCandidates = 10

	// charsPerToken is the documented estimation heuristic: one token
	// is roughly four characters.
	charsPerToken = 4

	// filterOverfetch widens the search when post-filtering by type, so
	// a filtered result set still approaches k entries.
	filterOverfetch = 3
)

// RAGService orchestrates embedding, vector storage and metadata
// bookkeeping behind a single facade. Construct one instance at process
// startup and hand it to every component that needs it.
type RAGService struct {
	embedder        driven.EmbeddingService
	vectors         driven.VectorStore
	metadata        driven.MetadataStore
	queryLog        driven.QueryLog
	storageLocation string
}

// NewRAGService creates the orchestrator. queryLog may be nil, which
// disables query diagnostics.
func NewRAGService(
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	metadata driven.MetadataStore,
	queryLog driven.QueryLog,
	storageLocation string,
) *RAGService {
	return &RAGService{
		embedder:        embedder,
		vectors:         vectors,
		metadata:        metadata,
		queryLog:        queryLog,
		storageLocation: storageLocation,
	}
}

// AddDocument embeds and stores one document, returning its
// content-derived ID.
func (s *RAGService) AddDocument(ctx context.Context, content string, opts driving.AddOptions) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: document content is empty", domain.ErrInvalidInput)
	}

	docType := opts.Type
	if docType == "" {
		docType = "text"
	}

	// Caller metadata first, injected keys win.
	metadata := make(map[string]any, len(opts.Metadata)+3)
	for k, v := range opts.Metadata {
		metadata[k] = v
	}
	metadata["title"] = opts.Title
	metadata["source"] = opts.Source
	metadata["type"] = docType

	id := domain.Fingerprint(content)
	logger.Debug("add document %s (type=%s, %d bytes)", id[:12], docType, len(content))

	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return "", fmt.Errorf("embedding document: %w", err)
	}

	now := time.Now().UTC()
	doc := domain.Document{
		ID:        id,
		Content:   content,
		Metadata:  metadata,
		Embedding: embedding,
		CreatedAt: now,
	}

	if err := s.vectors.Add(ctx, []domain.Document{doc}); err != nil {
		return "", fmt.Errorf("storing document: %w", err)
	}

	if err := s.metadata.Record(ctx, domain.DocumentRecord{
		ID:        id,
		Title:     opts.Title,
		Source:    opts.Source,
		DocType:   docType,
		Metadata:  metadata,
		CreatedAt: now,
	}); err != nil {
		return "", fmt.Errorf("recording document metadata: %w", err)
	}

	return id, nil
}

// AddKnowledgeBase flattens a nested category structure into individual
// documents. Each top-level key is a category whose value is either a
// single text, a mapping of named entries, or a list of items; non-text
// leaves are stored as their JSON encoding.
func (s *RAGService) AddKnowledgeBase(ctx context.Context, kb map[string]any) (int, error) {
	if kb == nil {
		return 0, fmt.Errorf("%w: knowledge base is nil", domain.ErrInvalidInput)
	}

	added := 0
	for category, value := range kb {
		switch v := value.(type) {
		case map[string]any:
			for key, item := range v {
				content, err := leafContent(item)
				if err != nil {
					return added, fmt.Errorf("%w: category %s key %s: %v", domain.ErrInvalidInput, category, key, err)
				}
				_, err = s.AddDocument(ctx, content, driving.AddOptions{
					Title:  fmt.Sprintf("%s/%s", category, key),
					Source: "knowledge_base",
					Type:   category,
					Metadata: map[string]any{
						"category": category,
						"key":      key,
					},
				})
				if err != nil {
					return added, err
				}
				added++
			}

		case []any:
			for i, item := range v {
				content, err := leafContent(item)
				if err != nil {
					return added, fmt.Errorf("%w: category %s index %d: %v", domain.ErrInvalidInput, category, i, err)
				}
				_, err = s.AddDocument(ctx, content, driving.AddOptions{
					Title:  fmt.Sprintf("%s/%d", category, i),
					Source: "knowledge_base",
					Type:   category,
					Metadata: map[string]any{
						"category": category,
						"index":    i,
					},
				})
				if err != nil {
					return added, err
				}
				added++
			}

		default:
			content, err := leafContent(value)
			if err != nil {
				return added, fmt.Errorf("%w: category %s: %v", domain.ErrInvalidInput, category, err)
			}
			_, err = s.AddDocument(ctx, content, driving.AddOptions{
				Title:  category,
				Source: "knowledge_base",
				Type:   category,
				Metadata: map[string]any{
					"category": category,
				},
			})
			if err != nil {
				return added, err
			}
			added++
		}
	}

	logger.Info("knowledge base ingested: %d documents", added)
	return added, nil
}

// Search returns up to k results ranked by descending similarity. When
// filterType is set, the unfiltered search is widened and results are
// post-filtered on metadata type, preserving rank order.
func (s *RAGService) Search(ctx context.Context, query string, k int, filterType string) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = DefaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	internalK := k
	if filterType != "" {
		internalK = k * filterOverfetch
	}

	results, err := s.vectors.Search(ctx, embedding, internalK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	if filterType != "" {
		filtered := make([]domain.SearchResult, 0, k)
		for _, r := range results {
			if r.Document.Type() == filterType {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}
	if len(results) > k {
		results = results[:k]
	}

	// Diagnostics only; a log failure must not fail the search.
	if s.queryLog != nil {
		if err := s.queryLog.Log(ctx, query, len(results)); err != nil {
			logger.Warn("query log write failed: %v", err)
		}
	}

	logger.Debug("search %q: %d results (k=%d, filter=%q)", query, len(results), k, filterType)
	return results, nil
}

// ContextForQuery builds a newline-separated context block from the
// most relevant snippets, bounded by maxTokens at roughly four
// characters per token.
func (s *RAGService) ContextForQuery(ctx context.Context, query string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	budget := maxTokens * charsPerToken

	results, err := s.Search(ctx, query, contextCandidates, "")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, r := range results {
		snippet := r.Document.Content
		needed := len(snippet)
		if b.Len() > 0 {
			needed++ // separator
		}

		if b.Len()+needed > budget {
			// First snippet alone over budget: truncate it rather than
			// return nothing.
			if b.Len() == 0 {
				b.WriteString(snippet[:budget])
			}
			break
		}

		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(snippet)
	}

	return b.String(), nil
}

// Delete removes documents from both stores. Unknown IDs are a no-op.
func (s *RAGService) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if err := s.vectors.Delete(ctx, ids); err != nil {
		return fmt.Errorf("deleting from vector store: %w", err)
	}
	if err := s.metadata.Delete(ctx, ids); err != nil {
		return fmt.Errorf("deleting metadata records: %w", err)
	}
	return nil
}

// Stats reports store totals for health and ops endpoints.
func (s *RAGService) Stats(ctx context.Context) (domain.Stats, error) {
	total, err := s.metadata.TotalCount(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("counting documents: %w", err)
	}

	byType, err := s.metadata.CountBy(ctx, "doc_type")
	if err != nil {
		return domain.Stats{}, fmt.Errorf("counting document types: %w", err)
	}

	queries := 0
	if s.queryLog != nil {
		queries, err = s.queryLog.TotalQueries(ctx)
		if err != nil {
			return domain.Stats{}, fmt.Errorf("counting queries: %w", err)
		}
	}

	return domain.Stats{
		TotalDocuments:  total,
		TotalQueries:    queries,
		DocumentTypes:   byType,
		Backend:         s.vectors.Name(),
		StorageLocation: s.storageLocation,
	}, nil
}

// leafContent renders a knowledge-base leaf as document text. Strings
// pass through; anything else is stored as its JSON encoding.
func leafContent(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
