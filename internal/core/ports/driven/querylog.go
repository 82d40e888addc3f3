package driven

import "context"

// QueryLog records search queries for diagnostics. Implementations cap
// retained entries so the log cannot grow without bound. Logging is
// best-effort: failures must never fail the search path.
type QueryLog interface {
	// Log records one executed query and its result count.
	Log(ctx context.Context, query string, results int) error

	// TotalQueries returns the number of retained log entries.
	TotalQueries(ctx context.Context) (int, error)
}
