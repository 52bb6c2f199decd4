package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

// Strategy is the capability the replay core consumes. Given one tick's books
// and a read-only snapshot of its own positions, a strategy emits an ordered
// list of order intents. Strategies may keep internal history across ticks
// but never mutate engine state directly.
type Strategy interface {
	Name() string
	Init(ctx context.Context) error
	OnTick(ctx context.Context, view domain.TickView) ([]domain.OrderIntent, error)
	Close() error
}

// SnapshotSink receives each tick's equity snapshot as it is produced. Sinks
// observe the run (progress publishing, live plotting); they never feed back
// into it.
type SnapshotSink interface {
	OnSnapshot(snap domain.EquitySnapshot)
}

// Replay drives one chronological run: per tick it rebuilds nothing (ticks
// arrive pre-built from the feed), invokes each strategy in registration
// order, matches the emitted intents against the same per-tick book, applies
// fills to the ledger in emission order, and appends an equity snapshot
// marked at the latest known mid price per instrument.
//
// Sequential intents for the same instrument within one tick see the same
// liquidity: the book is not decremented between matches. That mirrors the
// historical data this engine replays, where tick snapshots already reflect
// all trading activity.
type Replay struct {
	day        string
	strategies []Strategy
	ledger     *Ledger
	marks      map[string]float64
	sinks      []SnapshotSink
	logger     *slog.Logger
}

// NewReplay creates a run over the given strategies. Strategy order is the
// invocation and emission order and must be deterministic; callers pass the
// configured order, not a map iteration.
func NewReplay(day string, strategies []Strategy, sinks []SnapshotSink, logger *slog.Logger) *Replay {
	return &Replay{
		day:        day,
		strategies: strategies,
		ledger:     NewLedger(),
		marks:      make(map[string]float64),
		sinks:      sinks,
		logger:     logger.With(slog.String("component", "replay"), slog.String("day", day)),
	}
}

// Ledger exposes the run's ledger for inspection after Run returns.
func (r *Replay) Ledger() *Ledger { return r.ledger }

// Run replays the given chronologically ordered ticks to completion and
// returns the accumulated fill log, equity curve, and per-tick results.
// It aborts only on context cancellation or a ledger invariant fault; all
// per-tick conditions (missing books, unfillable orders, strategy errors)
// are recorded in the TickResults and the run continues.
func (r *Replay) Run(ctx context.Context, ticks []domain.Tick) (*domain.RunResult, error) {
	if len(ticks) == 0 {
		return nil, fmt.Errorf("engine: run day %s: %w", r.day, domain.ErrNoTicks)
	}

	for _, s := range r.strategies {
		if err := s.Init(ctx); err != nil {
			return nil, fmt.Errorf("engine: init strategy %s: %w", s.Name(), err)
		}
	}
	defer func() {
		for _, s := range r.strategies {
			_ = s.Close()
		}
	}()

	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	run := domain.Run{
		ID:         uuid.New().String(),
		Day:        r.day,
		Strategies: names,
		Status:     domain.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	r.logger.Info("replay started",
		slog.String("run_id", run.ID),
		slog.Int("ticks", len(ticks)),
		slog.Any("strategies", names),
	)

	result := &domain.RunResult{Run: run}
	for _, tick := range ticks {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("engine: run %s: %w", run.ID, ctx.Err())
		default:
		}

		tr, err := r.step(ctx, tick)
		if err != nil {
			return nil, err
		}
		result.Ticks = append(result.Ticks, tr)
		result.Fills = append(result.Fills, tr.Fills...)
		result.Equity = append(result.Equity, tr.Equity)

		for _, sink := range r.sinks {
			sink.OnSnapshot(tr.Equity)
		}
	}

	now := time.Now().UTC()
	last := result.Equity[len(result.Equity)-1]
	result.Run.Status = domain.RunStatusDone
	result.Run.FinishedAt = &now
	result.Run.TickCount = len(result.Ticks)
	result.Run.FillCount = len(result.Fills)
	result.Run.Realized = last.Realized
	result.Run.Total = last.Total

	r.logger.Info("replay finished",
		slog.String("run_id", run.ID),
		slog.Int("fills", result.Run.FillCount),
		slog.Float64("realized_pnl", result.Run.Realized),
		slog.Float64("total_pnl", result.Run.Total),
	)
	return result, nil
}

// step processes a single tick and returns its explicit result.
func (r *Replay) step(ctx context.Context, tick domain.Tick) (domain.TickResult, error) {
	tr := domain.TickResult{Timestamp: tick.Timestamp}

	// Mark prices update from this tick's two-sided books and carry forward
	// across ticks: a one-sided instrument keeps marking at its last seen mid
	// rather than dropping to zero unrealized.
	for sym, depth := range tick.Depths {
		if mid, ok := depth.Mid(); ok {
			r.marks[sym] = mid
		}
	}

	for _, strat := range r.strategies {
		view := domain.TickView{
			Timestamp: tick.Timestamp,
			Depths:    tick.Depths,
			Positions: r.ledger.Positions(),
		}
		intents, err := strat.OnTick(ctx, view)
		if err != nil {
			// A failing strategy skips this tick; the failure is part of the
			// run's record, not a console-only event.
			tr.Errors = append(tr.Errors, domain.TickError{
				Strategy: strat.Name(),
				Err:      err.Error(),
			})
			r.logger.Warn("strategy error",
				slog.Int64("timestamp", tick.Timestamp),
				slog.String("strategy", strat.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}

		for _, intent := range intents {
			if intent.Quantity == 0 {
				tr.Dropped = append(tr.Dropped, domain.DroppedIntent{Intent: intent, Reason: domain.DropZeroQuantity})
				continue
			}
			depth, ok := tick.Depths[intent.Symbol]
			if !ok {
				tr.Dropped = append(tr.Dropped, domain.DroppedIntent{Intent: intent, Reason: domain.DropNoBook})
				continue
			}

			fill := Match(intent, depth)
			if fill.Quantity == 0 {
				tr.Dropped = append(tr.Dropped, domain.DroppedIntent{Intent: intent, Reason: domain.DropNoLiquidity})
				continue
			}
			fill.Timestamp = tick.Timestamp

			if err := r.ledger.Apply(fill); err != nil {
				return tr, fmt.Errorf("engine: tick %d: %w", tick.Timestamp, err)
			}
			tr.Fills = append(tr.Fills, fill)
		}
	}

	realized := r.ledger.RealizedTotal()
	unrealized := r.ledger.MarkAll(r.marks)
	tr.Equity = domain.EquitySnapshot{
		Timestamp:  tick.Timestamp,
		Realized:   realized,
		Unrealized: unrealized,
		Total:      realized + unrealized,
		Positions:  r.ledger.Positions(),
	}
	return tr, nil
}
