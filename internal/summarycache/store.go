// Package summarycache persists computed summaries in a local DuckDB file so
// repeated requests for the same histogram, scatter or ROC curve do not hit
// the warehouse again until the cached copy expires.
package summarycache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/plotline-io/plotline/internal/summarycache/migrate"
)

// Entry is one cached summary. Payload holds the JSON-encoded result.
type Entry struct {
	ID          string
	Fingerprint string
	Kind        string
	Payload     []byte
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Store manages the DuckDB cache database.
type Store struct {
	db           *sql.DB
	mu           sync.RWMutex
	dbPath       string
	QueryTimeout time.Duration
}

// NewStore opens or creates the cache database.
// If dbPath is empty, an in-memory database is used.
// An optional queryTimeout can be passed; it defaults to 30s.
func NewStore(dbPath string, queryTimeout ...time.Duration) (*Store, error) {
	dsn := ""
	if dbPath != "" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		dsn = dbPath
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, err
	}

	if err := migrate.NewRunner(db).Run(); err != nil {
		db.Close()
		return nil, err
	}

	qt := 30 * time.Second
	if len(queryTimeout) > 0 && queryTimeout[0] > 0 {
		qt = queryTimeout[0]
	}

	return &Store{
		db:           db,
		dbPath:       dbPath,
		QueryTimeout: qt,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Fingerprint derives a deterministic cache key from the summary kind and the
// request parameters that shape the result.
func Fingerprint(kind string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the freshest unexpired entry for the fingerprint, or false when
// the cache has nothing usable.
func (s *Store) Get(fingerprint string) (*Entry, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.QueryTimeout)
	defer cancel()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		e       Entry
		payload string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, fingerprint, kind, payload, created_at, expires_at
		FROM summaries
		WHERE fingerprint = ? AND expires_at > current_timestamp
		ORDER BY created_at DESC
		LIMIT 1`, fingerprint).
		Scan(&e.ID, &e.Fingerprint, &e.Kind, &payload, &e.CreatedAt, &e.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}
	e.Payload = []byte(payload)
	return &e, true, nil
}

// InsertBatch writes a batch of entries in a single transaction. If the batch
// fails it is retried entry-by-entry to salvage as many as possible.
func (s *Store) InsertBatch(entries []*Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.QueryTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.insertBatchTx(ctx, entries)
	if err == nil {
		return nil
	}

	var failed int
	for _, e := range entries {
		if rerr := s.insertBatchTx(ctx, []*Entry{e}); rerr != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("cache insert: %d/%d entries dropped: %w", failed, len(entries), err)
	}
	return nil
}

func (s *Store) insertBatchTx(ctx context.Context, entries []*Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO summaries (id, fingerprint, kind, payload, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, e.Fingerprint, e.Kind, string(e.Payload), e.CreatedAt, e.ExpiresAt); err != nil {
			return fmt.Errorf("entry insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DeleteExpired removes all entries whose expiry has passed and returns the
// number of rows deleted.
func (s *Store) DeleteExpired() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.QueryTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM summaries WHERE expires_at <= current_timestamp")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// EntryCount returns the number of cached summaries, expired or not.
func (s *Store) EntryCount() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.QueryTimeout)
	defer cancel()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM summaries").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Path returns the on-disk location of the cache, or "in-memory".
func (s *Store) Path() string {
	if strings.TrimSpace(s.dbPath) == "" {
		return "in-memory"
	}
	return s.dbPath
}
