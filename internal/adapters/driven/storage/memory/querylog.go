package memory

import (
	"context"
	"sync"

	"github.com/lekesiz/netz-rag/internal/core/ports/driven"
)

// Ensure QueryLog implements the interface.
var _ driven.QueryLog = (*QueryLog)(nil)

// QueryLog is an in-memory implementation of driven.QueryLog.
// It keeps only a bounded count of entries, dropping the oldest.
type QueryLog struct {
	mu         sync.Mutex
	entries    []string
	maxEntries int
}

// NewQueryLog creates a capped in-memory query log.
func NewQueryLog(maxEntries int) *QueryLog {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &QueryLog{maxEntries: maxEntries}
}

// Log records one executed query.
func (l *QueryLog) Log(_ context.Context, query string, _ int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, query)
	if len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}
	return nil
}

// TotalQueries returns the number of retained log entries.
func (l *QueryLog) TotalQueries(_ context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries), nil
}
