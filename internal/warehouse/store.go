// Package warehouse talks to the MPP analytical database (Greenplum, HAWQ,
// or plain PostgreSQL) that holds the large tables being summarized.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store manages the warehouse connection pool and provides summary and
// introspection queries.
type Store struct {
	pool         *pgxpool.Pool
	QueryTimeout time.Duration
	sem          chan struct{} // bounds concurrent warehouse queries; nil = unbounded
}

// NewStore connects to the warehouse using a libpq-style DSN or URL.
// An optional queryTimeout can be passed; it defaults to 60s, since
// warehouse aggregations over billions of rows take a while.
func NewStore(ctx context.Context, dsn string, queryTimeout ...time.Duration) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing warehouse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to warehouse: %w", err)
	}

	qt := 60 * time.Second
	if len(queryTimeout) > 0 && queryTimeout[0] > 0 {
		qt = queryTimeout[0]
	}

	return &Store{
		pool:         pool,
		QueryTimeout: qt,
	}, nil
}

// SetMaxConcurrentQueries bounds the number of warehouse queries in flight
// at once. Zero or negative removes the bound.
func (s *Store) SetMaxConcurrentQueries(n int) {
	if n <= 0 {
		s.sem = nil
		return
	}
	s.sem = make(chan struct{}, n)
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies the warehouse is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// queryCtx returns a child context with the store's configured query timeout.
func (s *Store) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.QueryTimeout)
}

// acquire blocks until a query slot is free (or the context is done).
func (s *Store) acquire(ctx context.Context) (release func(), err error) {
	if s.sem == nil {
		return func() {}, nil
	}
	select {
	case s.sem <- struct{}{}:
		return func() { <-s.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
