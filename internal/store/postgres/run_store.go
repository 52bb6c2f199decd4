package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

// RunStore implements domain.RunStore using PostgreSQL.
type RunStore struct {
	pool *pgxpool.Pool
}

// NewRunStore creates a RunStore backed by the given connection pool.
func NewRunStore(pool *pgxpool.Pool) *RunStore {
	return &RunStore{pool: pool}
}

const runSelectCols = `id, day, strategies, status, started_at, finished_at,
	tick_count, fill_count, realized, total`

func scanRunRow(row pgx.Row) (domain.Run, error) {
	var r domain.Run
	var status string
	err := row.Scan(
		&r.ID, &r.Day, &r.Strategies, &status,
		&r.StartedAt, &r.FinishedAt,
		&r.TickCount, &r.FillCount, &r.Realized, &r.Total,
	)
	if err != nil {
		return domain.Run{}, err
	}
	r.Status = domain.RunStatus(status)
	return r, nil
}

// Create inserts a new run row in running state.
func (s *RunStore) Create(ctx context.Context, run domain.Run) error {
	const query = `
		INSERT INTO replay_runs (
			id, day, strategies, status, started_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, NOW())`

	_, err := s.pool.Exec(ctx, query,
		run.ID, run.Day, run.Strategies, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create run %s: %w", run.ID, err)
	}
	return nil
}

// Finish records a run's terminal status and summary counters.
func (s *RunStore) Finish(ctx context.Context, run domain.Run) error {
	const query = `
		UPDATE replay_runs SET
			status      = $2,
			finished_at = $3,
			tick_count  = $4,
			fill_count  = $5,
			realized    = $6,
			total       = $7,
			updated_at  = NOW()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query,
		run.ID, string(run.Status), run.FinishedAt,
		run.TickCount, run.FillCount, run.Realized, run.Total,
	)
	if err != nil {
		return fmt.Errorf("postgres: finish run %s: %w", run.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID retrieves a single run by its ID.
func (s *RunStore) GetByID(ctx context.Context, id string) (domain.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+runSelectCols+` FROM replay_runs WHERE id = $1`, id)

	r, err := scanRunRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Run{}, domain.ErrNotFound
		}
		return domain.Run{}, fmt.Errorf("postgres: get run %s: %w", id, err)
	}
	return r, nil
}

// ListByDay returns all runs for a day, most recent first.
func (s *RunStore) ListByDay(ctx context.Context, day string) ([]domain.Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+runSelectCols+` FROM replay_runs
		 WHERE day = $1 ORDER BY started_at DESC`, day)
	if err != nil {
		return nil, fmt.Errorf("postgres: list runs for day %s: %w", day, err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		r, err := scanRunRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Compile-time interface check.
var _ domain.RunStore = (*RunStore)(nil)
