package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

// EquityStore implements domain.EquityStore using PostgreSQL. Positions are
// stored as a JSONB instrument→quantity object per snapshot.
type EquityStore struct {
	pool *pgxpool.Pool
}

// NewEquityStore creates an EquityStore backed by the given connection pool.
func NewEquityStore(pool *pgxpool.Pool) *EquityStore {
	return &EquityStore{pool: pool}
}

// InsertBatch bulk-inserts a run's equity curve via COPY.
func (s *EquityStore) InsertBatch(ctx context.Context, runID string, snaps []domain.EquitySnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	rows := make([][]any, len(snaps))
	for i, snap := range snaps {
		positions, err := json.Marshal(snap.Positions)
		if err != nil {
			return fmt.Errorf("postgres: marshal positions at %d: %w", snap.Timestamp, err)
		}
		rows[i] = []any{runID, snap.Timestamp, snap.Realized, snap.Unrealized, snap.Total, positions}
	}

	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"replay_equity"},
		[]string{"run_id", "ts", "realized", "unrealized", "total", "positions"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("postgres: copy equity for run %s: %w", runID, err)
	}
	return nil
}

// ListByRun returns a run's equity curve in timestamp order.
func (s *EquityStore) ListByRun(ctx context.Context, runID string) ([]domain.EquitySnapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ts, realized, unrealized, total, positions FROM replay_equity
		 WHERE run_id = $1 ORDER BY ts, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list equity for run %s: %w", runID, err)
	}
	defer rows.Close()

	var snaps []domain.EquitySnapshot
	for rows.Next() {
		var snap domain.EquitySnapshot
		var positions []byte
		if err := rows.Scan(&snap.Timestamp, &snap.Realized, &snap.Unrealized, &snap.Total, &positions); err != nil {
			return nil, fmt.Errorf("postgres: scan equity: %w", err)
		}
		if err := json.Unmarshal(positions, &snap.Positions); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal positions: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Compile-time interface check.
var _ domain.EquityStore = (*EquityStore)(nil)
