package watchlist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the watchlist in PostgreSQL
// ⭐ SSOT: watchlist 테이블 접근은 여기서만
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store on an existing pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the watchlist schema and table if missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS watchlist`,
		`CREATE TABLE IF NOT EXISTS watchlist.entries (
			id       BIGSERIAL PRIMARY KEY,
			ticker   VARCHAR(10) NOT NULL UNIQUE,
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create watchlist schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT ticker, added_at
		FROM watchlist.entries
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Ticker, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

func (s *PostgresStore) Add(ctx context.Context, ticker string) (bool, error) {
	query := `
		INSERT INTO watchlist.entries (ticker)
		VALUES ($1)
		ON CONFLICT (ticker) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, query, ticker)
	if err != nil {
		return false, fmt.Errorf("failed to add %s to watchlist: %w", ticker, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) Remove(ctx context.Context, ticker string) (bool, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM watchlist.entries WHERE ticker = $1", ticker)
	if err != nil {
		return false, fmt.Errorf("failed to remove %s from watchlist: %w", ticker, err)
	}
	return tag.RowsAffected() == 1, nil
}
