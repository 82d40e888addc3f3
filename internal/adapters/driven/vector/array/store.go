// Package array provides an in-process vector store backed by a full
// linear scan. Similarity is the dot product against every stored
// vector, which equals cosine similarity because embeddings are
// L2-normalised. The index is persisted to disk on every mutation so a
// process restart recovers prior state. Suitable for corpora of up to a
// few thousand documents; larger deployments should use the qdrant
// backend.
package array

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/lekesiz/netz-rag/internal/core/domain"
	"github.com/lekesiz/netz-rag/internal/core/ports/driven"
	"github.com/lekesiz/netz-rag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const indexFileName = "vector_index.json"

// Store holds all documents and their embeddings in memory.
// A single coarse lock guards the index; writes are infrequent relative
// to reads in the expected workload.
type Store struct {
	mu         sync.RWMutex
	documents  map[string]domain.Document
	path       string
	dimensions int
}

// indexFile is the on-disk representation of the index.
type indexFile struct {
	Dimensions int                        `json:"dimensions"`
	Documents  map[string]domain.Document `json:"documents"`
}

// NewStore creates an array store persisting its index under dataDir.
// An existing index file is loaded; a missing one starts empty.
func NewStore(dataDir string, dimensions int) (*Store, error) {
	if dimensions <= 0 {
		dimensions = domain.EmbeddingDimensions
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{
		documents:  make(map[string]domain.Document),
		path:       filepath.Join(dataDir, indexFileName),
		dimensions: dimensions,
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	logger.Debug("array store: loaded %d documents from %s", len(s.documents), s.path)

	return s, nil
}

// Add upserts documents by ID and persists the index.
func (s *Store) Add(_ context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	for _, doc := range docs {
		if len(doc.Embedding) != s.dimensions {
			return fmt.Errorf("%w: document %s has %d dimensions, store expects %d",
				domain.ErrDimensionMismatch, doc.ID, len(doc.Embedding), s.dimensions)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		s.documents[doc.ID] = doc
	}

	return s.persist()
}

// Search finds the k most similar documents via a full scan.
func (s *Store) Search(_ context.Context, query []float32, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return []domain.SearchResult{}, nil
	}
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, store expects %d",
			domain.ErrDimensionMismatch, len(query), s.dimensions)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.SearchResult, 0, len(s.documents))
	for _, doc := range s.documents {
		results = append(results, domain.SearchResult{
			Document: doc,
			Score:    dot(query, doc.Embedding),
		})
	}

	// Descending score; ID breaks ties so ordering is deterministic.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Delete removes documents by ID and persists the index.
// Unknown IDs are a no-op.
func (s *Store) Delete(_ context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, id := range ids {
		if _, ok := s.documents[id]; ok {
			delete(s.documents, id)
			changed = true
		}
	}
	if !changed {
		return nil
	}

	return s.persist()
}

// Count returns the number of stored documents.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

// Name identifies the backend.
func (s *Store) Name() string {
	return "array"
}

// Close releases resources. The index is already on disk.
func (s *Store) Close() error {
	return nil
}

// Path returns the index file path.
func (s *Store) Path() string {
	return s.path
}

// load reads the index file if present. Callers hold no lock yet; load
// runs only from NewStore.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index file: %w", err)
	}

	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("parsing index file: %w", err)
	}
	if idx.Dimensions != 0 && idx.Dimensions != s.dimensions {
		return fmt.Errorf("%w: index file has %d dimensions, store expects %d",
			domain.ErrDimensionMismatch, idx.Dimensions, s.dimensions)
	}
	if idx.Documents != nil {
		s.documents = idx.Documents
	}
	return nil
}

// persist writes the index atomically: marshal to a temp file in the
// same directory, then rename over the old index. An interrupted write
// never corrupts the previous on-disk state. Caller holds the write lock.
func (s *Store) persist() error {
	data, err := json.Marshal(indexFile{
		Dimensions: s.dimensions,
		Documents:  s.documents,
	})
	if err != nil {
		return fmt.Errorf("marshalling index: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), indexFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp index file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp index file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing index file: %w", err)
	}
	return nil
}

// dot computes the dot product in float64 to limit rounding drift.
func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
