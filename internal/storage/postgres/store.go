// Package postgres is the PostgreSQL document store adapter: one JSONB row
// per user, written with an upsert so a save is all-or-nothing.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stretchkit/progression/internal/domain"
	"github.com/stretchkit/progression/internal/metrics"
	"github.com/stretchkit/progression/internal/storage"
)

// Pool connection defaults
const (
	DefaultMaxConns        = 10
	DefaultMaxConnIdleTime = 30 * time.Minute
	DefaultMaxConnLifetime = time.Hour
)

type store struct {
	pool *pgxpool.Pool
}

// NewStore creates a PostgreSQL-backed Store on an existing pool.
func NewStore(pool *pgxpool.Pool) storage.Store {
	return &store{pool: pool}
}

// NewPool creates a connection pool and verifies connectivity.
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.MaxConns = DefaultMaxConns
	config.MaxConnIdleTime = DefaultMaxConnIdleTime
	config.MaxConnLifetime = DefaultMaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Load reads the user's progress document.
func (s *store) Load(ctx context.Context, userID string) (*domain.UserProgress, error) {
	timer := time.Now()
	defer func() {
		metrics.StorageOpDuration.WithLabelValues("load").Observe(time.Since(timer).Seconds())
	}()

	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM user_progress WHERE user_id = $1`,
		userID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserProgressNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	var doc domain.UserProgress
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	return &doc, nil
}

// Save upserts the whole document in a single statement.
func (s *store) Save(ctx context.Context, doc *domain.UserProgress) error {
	timer := time.Now()
	defer func() {
		metrics.StorageOpDuration.WithLabelValues("save").Observe(time.Since(timer).Seconds())
	}()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO user_progress (user_id, document, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET document = EXCLUDED.document, updated_at = now()`,
		doc.UserID, data,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Delete removes the user's document (explicit reset-all-data path).
func (s *store) Delete(ctx context.Context, userID string) error {
	timer := time.Now()
	defer func() {
		metrics.StorageOpDuration.WithLabelValues("delete").Observe(time.Since(timer).Seconds())
	}()

	_, err := s.pool.Exec(ctx, `DELETE FROM user_progress WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *store) Close() {
	s.pool.Close()
}
