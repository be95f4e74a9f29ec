package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/whalewatch/internal/contracts"
)

// PostgresStore keeps classification history in PostgreSQL
// ⭐ SSOT: 시그널 이력 저장/조회는 여기서만
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store on an existing pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the signals schema, table and index if missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS signals`,
		`CREATE TABLE IF NOT EXISTS signals.history (
			id              BIGSERIAL PRIMARY KEY,
			ticker          VARCHAR(10) NOT NULL,
			status          VARCHAR(8) NOT NULL,
			confidence      INTEGER NOT NULL,
			volume_ratio    DOUBLE PRECISION NOT NULL,
			price_confirmed BOOLEAN NOT NULL,
			is_whale        BOOLEAN NOT NULL,
			rule            VARCHAR(16) NOT NULL,
			current_volume  BIGINT NOT NULL,
			average_volume  BIGINT NOT NULL,
			price_change    DOUBLE PRECISION NOT NULL,
			alerts          TEXT[] NOT NULL DEFAULT '{}',
			analyzed_at     TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS history_ticker_analyzed_at_idx
			ON signals.history (ticker, analyzed_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create signals schema: %w", err)
		}
	}
	return nil
}

// Save inserts records in a single transaction
func (s *PostgresStore) Save(ctx context.Context, records ...Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if err := insertRecord(ctx, tx, r); err != nil {
			return fmt.Errorf("failed to save history for %s: %w", r.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertRecord(ctx context.Context, tx pgx.Tx, r Record) error {
	query := `
		INSERT INTO signals.history (
			ticker, status, confidence, volume_ratio,
			price_confirmed, is_whale, rule,
			current_volume, average_volume, price_change,
			alerts, analyzed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	alerts := r.Alerts
	if alerts == nil {
		alerts = []string{}
	}

	_, err := tx.Exec(ctx, query,
		r.Ticker, string(r.Status), r.Confidence, r.VolumeRatio,
		r.PriceConfirmed, r.IsWhale, r.Rule,
		r.CurrentVolume, r.AverageVolume, r.PriceChange,
		alerts, r.AnalyzedAt,
	)
	return err
}

func (s *PostgresStore) Recent(ctx context.Context, ticker string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `
		SELECT
			ticker, status, confidence, volume_ratio,
			price_confirmed, is_whale, rule,
			current_volume, average_volume, price_change,
			alerts, analyzed_at
		FROM signals.history
		WHERE ticker = $1
		ORDER BY analyzed_at DESC, id DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query signal history: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var r Record
		var status string

		err := rows.Scan(
			&r.Ticker, &status, &r.Confidence, &r.VolumeRatio,
			&r.PriceConfirmed, &r.IsWhale, &r.Rule,
			&r.CurrentVolume, &r.AverageVolume, &r.PriceChange,
			&r.Alerts, &r.AnalyzedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		r.Status = contracts.SignalStatus(status)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}
