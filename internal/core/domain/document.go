package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Embedding dimensionality used across the system. Every vector store
// backend and embedding service must agree on it.
const EmbeddingDimensions = 384

// Document represents one unit of stored knowledge.
// Documents are immutable after creation; updating content means
// deleting and re-adding, which produces a new ID.
type Document struct {
	// ID is the content fingerprint (hex SHA-256 of Content).
	// Identical content always yields the same ID, making insertion
	// idempotent.
	ID string

	// Content is the raw text body. Never empty.
	Content string

	// Metadata contains arbitrary key-value pairs. The orchestrator
	// injects "title", "source" and "type" at minimum.
	Metadata map[string]any

	// Embedding is the vector representation for similarity search.
	Embedding []float32

	// CreatedAt is when the document was first added. Set once.
	CreatedAt time.Time
}

// Type returns the document type from metadata, or "" if unset.
func (d *Document) Type() string {
	if d.Metadata == nil {
		return ""
	}
	t, _ := d.Metadata["type"].(string)
	return t
}

// Fingerprint computes the stable content-derived identifier for a
// document body.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// DocumentRecord is the relational bookkeeping row kept alongside each
// stored document. It is never consulted for ranking, only for listing
// and statistics.
type DocumentRecord struct {
	ID        string
	Title     string
	Source    string
	DocType   string
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}
