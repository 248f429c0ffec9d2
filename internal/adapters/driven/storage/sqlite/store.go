package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/bookfeed/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.bookfeed/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".bookfeed", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// KeyValueStore returns a KeyValueStore interface backed by this store.
func (s *Store) KeyValueStore() driven.KeyValueStore {
	return &kvStore{store: s}
}

// DeliveryLogStore returns a DeliveryLogStore interface backed by this store.
func (s *Store) DeliveryLogStore() driven.DeliveryLogStore {
	return &deliveryLogStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial_schema.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Key-Value Store ====================

// kvStore implements driven.KeyValueStore.
type kvStore struct {
	store *Store
}

var _ driven.KeyValueStore = (*kvStore)(nil)

// Get retrieves the values for the given keys. Missing keys are absent
// from the result map.
func (s *kvStore) Get(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(keys))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	rows, err := s.store.db.QueryContext(ctx,
		"SELECT key, value FROM kv WHERE key IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("querying kv: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning kv row: %w", err)
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating kv rows: %w", err)
	}

	return result, nil
}

// Set stores all given values in one transaction.
func (s *kvStore) Set(ctx context.Context, values map[string][]byte) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning kv transaction: %w", err)
	}

	now := time.Now().UTC()
	for key, value := range values {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kv (key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				updated_at = excluded.updated_at
		`, key, value, now)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("saving key %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing kv transaction: %w", err)
	}
	return nil
}

// ==================== Delivery Log Store ====================

// deliveryLogStore implements driven.DeliveryLogStore.
type deliveryLogStore struct {
	store *Store
}

var _ driven.DeliveryLogStore = (*deliveryLogStore)(nil)

// Record appends a receipt to the log.
func (s *deliveryLogStore) Record(ctx context.Context, receipt domain.DeliveryReceipt) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO delivery_log (book_id, chunk_index, chapter, paste_url, message, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, receipt.BookID, receipt.ChunkIndex, receipt.Chapter,
		receipt.PasteURL, receipt.Message, receipt.DeliveredAt.UTC())

	if err != nil {
		return fmt.Errorf("recording delivery: %w", err)
	}
	return nil
}

// ListByBook returns all receipts for a book, oldest first.
func (s *deliveryLogStore) ListByBook(ctx context.Context, bookID string) ([]domain.DeliveryReceipt, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT book_id, chunk_index, chapter, paste_url, message, delivered_at
		FROM delivery_log
		WHERE book_id = ?
		ORDER BY id
	`, bookID)
	if err != nil {
		return nil, fmt.Errorf("querying delivery log: %w", err)
	}
	defer rows.Close()

	var receipts []domain.DeliveryReceipt //nolint:prealloc // size unknown from query
	for rows.Next() {
		var receipt domain.DeliveryReceipt
		var deliveredAt sql.NullTime
		if err := rows.Scan(&receipt.BookID, &receipt.ChunkIndex, &receipt.Chapter,
			&receipt.PasteURL, &receipt.Message, &deliveredAt); err != nil {
			return nil, fmt.Errorf("scanning delivery log row: %w", err)
		}
		if deliveredAt.Valid {
			receipt.DeliveredAt = deliveredAt.Time
		}
		receipts = append(receipts, receipt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating delivery log rows: %w", err)
	}

	return receipts, nil
}
