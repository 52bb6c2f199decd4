package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

// FillStore implements domain.FillStore using PostgreSQL.
type FillStore struct {
	pool *pgxpool.Pool
}

// NewFillStore creates a FillStore backed by the given connection pool.
func NewFillStore(pool *pgxpool.Pool) *FillStore {
	return &FillStore{pool: pool}
}

// InsertBatch bulk-inserts a run's fill log via COPY. A full day produces
// thousands of fills, so row-at-a-time inserts are not worth it.
func (s *FillStore) InsertBatch(ctx context.Context, runID string, fills []domain.Fill) error {
	if len(fills) == 0 {
		return nil
	}

	rows := make([][]any, len(fills))
	for i, f := range fills {
		rows[i] = []any{runID, f.Timestamp, f.Symbol, f.Price, f.Quantity}
	}

	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"replay_fills"},
		[]string{"run_id", "ts", "product", "price", "quantity"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("postgres: copy fills for run %s: %w", runID, err)
	}
	return nil
}

// ListByRun returns a run's fills in timestamp order.
func (s *FillStore) ListByRun(ctx context.Context, runID string) ([]domain.Fill, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ts, product, price, quantity FROM replay_fills
		 WHERE run_id = $1 ORDER BY ts, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list fills for run %s: %w", runID, err)
	}
	defer rows.Close()

	var fills []domain.Fill
	for rows.Next() {
		var f domain.Fill
		if err := rows.Scan(&f.Timestamp, &f.Symbol, &f.Price, &f.Quantity); err != nil {
			return nil, fmt.Errorf("postgres: scan fill: %w", err)
		}
		fills = append(fills, f)
	}
	return fills, rows.Err()
}

// Compile-time interface check.
var _ domain.FillStore = (*FillStore)(nil)
