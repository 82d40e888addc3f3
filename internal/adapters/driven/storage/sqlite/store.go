// Package sqlite provides the relational metadata store and query log
// on a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lekesiz/netz-rag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/lekesiz/netz-rag/internal/core/domain"
	"github.com/lekesiz/netz-rag/internal/core/ports/driven"
)

// DefaultQueryLogCap bounds the number of retained query log rows.
const DefaultQueryLogCap = 10000

// Store is a unified SQLite-based storage that provides access to the
// metadata store and query log interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the given data directory.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".netz-rag", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// WAL mode for better concurrency under a multi-worker service.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// MetadataStore returns a MetadataStore interface backed by this store.
func (s *Store) MetadataStore() driven.MetadataStore {
	return &metadataStore{store: s}
}

// QueryLog returns a QueryLog interface backed by this store, capped at
// maxEntries rows (DefaultQueryLogCap when zero).
func (s *Store) QueryLog(maxEntries int) driven.QueryLog {
	if maxEntries <= 0 {
		maxEntries = DefaultQueryLogCap
	}
	return &queryLog{store: s, maxEntries: maxEntries}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Metadata Store ====================

// metadataStore implements driven.MetadataStore.
type metadataStore struct {
	store *Store
}

var _ driven.MetadataStore = (*metadataStore)(nil)

// countByFields whitelists groupable columns against SQL injection.
var countByFields = map[string]bool{
	"doc_type": true,
	"source":   true,
}

// Record stores or updates a document record.
func (s *metadataStore) Record(ctx context.Context, rec domain.DocumentRecord) error {
	metadataJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, source, doc_type, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			source = excluded.source,
			doc_type = excluded.doc_type,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, rec.ID, rec.Title, rec.Source, rec.DocType, string(metadataJSON),
		rec.CreatedAt, rec.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document record: %w", err)
	}
	return nil
}

// Delete removes records by ID. Unknown IDs are a no-op.
func (s *metadataStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM documents WHERE id = ?")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("deleting document record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *metadataStore) Get(ctx context.Context, id string) (*domain.DocumentRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, source, doc_type, metadata, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	return scanRecord(row)
}

// List returns records ordered by creation time, newest first.
func (s *metadataStore) List(ctx context.Context, limit, offset int) ([]domain.DocumentRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, source, doc_type, metadata, created_at, updated_at
		FROM documents
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying document records: %w", err)
	}
	defer rows.Close()

	var records []domain.DocumentRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecordRows(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document records: %w", err)
	}

	return records, nil
}

// CountBy groups record counts by the given field.
func (s *metadataStore) CountBy(ctx context.Context, field string) (map[string]int, error) {
	if !countByFields[field] {
		return nil, fmt.Errorf("%w: cannot group by %q", domain.ErrInvalidInput, field)
	}

	rows, err := s.store.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s, COUNT(*) FROM documents GROUP BY %s", field, field))
	if err != nil {
		return nil, fmt.Errorf("counting by %s: %w", field, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var value string
		var count int
		if err := rows.Scan(&value, &count); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		counts[value] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating count rows: %w", err)
	}

	return counts, nil
}

// TotalCount returns the number of records.
func (s *metadataStore) TotalCount(ctx context.Context) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// ==================== Query Log ====================

// queryLog implements driven.QueryLog with a retention cap.
type queryLog struct {
	store      *Store
	maxEntries int
}

var _ driven.QueryLog = (*queryLog)(nil)

// Log records one executed query, then prunes the oldest rows beyond
// the retention cap.
func (l *queryLog) Log(ctx context.Context, query string, results int) error {
	_, err := l.store.db.ExecContext(ctx, `
		INSERT INTO queries (id, query, result_count, created_at)
		VALUES (?, ?, ?, ?)
	`, uuid.NewString(), query, results, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("logging query: %w", err)
	}

	_, err = l.store.db.ExecContext(ctx, `
		DELETE FROM queries WHERE id NOT IN (
			SELECT id FROM queries ORDER BY created_at DESC LIMIT ?
		)
	`, l.maxEntries)
	if err != nil {
		return fmt.Errorf("pruning query log: %w", err)
	}
	return nil
}

// TotalQueries returns the number of retained log entries.
func (l *queryLog) TotalQueries(ctx context.Context) (int, error) {
	var count int
	err := l.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM queries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting queries: %w", err)
	}
	return count, nil
}

// ==================== Helper Functions ====================

// scanRecord scans a single document record row.
func scanRecord(row *sql.Row) (*domain.DocumentRecord, error) {
	var rec domain.DocumentRecord
	var metadataJSON string

	if err := row.Scan(&rec.ID, &rec.Title, &rec.Source, &rec.DocType,
		&metadataJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document record: %w", err)
	}

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &rec, nil
}

// scanRecordRows scans a document record from *sql.Rows.
func scanRecordRows(rows *sql.Rows) (*domain.DocumentRecord, error) {
	var rec domain.DocumentRecord
	var metadataJSON string

	if err := rows.Scan(&rec.ID, &rec.Title, &rec.Source, &rec.DocType,
		&metadataJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning document record: %w", err)
	}

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &rec, nil
}
