package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OtsoKarali/prosperity-replay/internal/config"
	"github.com/OtsoKarali/prosperity-replay/internal/domain"
	"github.com/OtsoKarali/prosperity-replay/internal/engine"
	"github.com/OtsoKarali/prosperity-replay/internal/feed"
	"github.com/OtsoKarali/prosperity-replay/internal/report"
	"github.com/OtsoKarali/prosperity-replay/internal/server/ws"
	"github.com/OtsoKarali/prosperity-replay/internal/strategy"
)

// ReplayMode replays the configured days sequentially in one worker. The
// monitor server, when enabled, runs for the duration of the mode.
func (a *App) ReplayMode(ctx context.Context, deps *Dependencies) error {
	return a.runMode(ctx, deps, 1)
}

// BatchMode replays the configured days in parallel, one goroutine per day
// up to the configured parallelism. Parallelism lives across runs, never
// inside one: each day gets its own ledger, strategies, and book state.
func (a *App) BatchMode(ctx context.Context, deps *Dependencies) error {
	limit := a.cfg.Replay.Parallelism
	if limit <= 0 {
		limit = len(a.cfg.Data.Days)
	}
	return a.runMode(ctx, deps, limit)
}

func (a *App) runMode(ctx context.Context, deps *Dependencies, limit int) error {
	srvCtx, stopSrv := context.WithCancel(ctx)
	defer stopSrv()

	var srv errgroup.Group
	if a.cfg.Server.Enabled && deps.Hub != nil {
		srv.Go(func() error {
			return ws.Serve(srvCtx, a.cfg.Server.Addr, deps.Hub, a.logger)
		})
	}

	days, dctx := errgroup.WithContext(ctx)
	days.SetLimit(limit)
	for _, day := range a.cfg.Data.Days {
		day := day
		days.Go(func() error {
			return a.runDay(dctx, deps, day)
		})
	}
	err := days.Wait()

	stopSrv()
	if srvErr := srv.Wait(); err == nil && srvErr != nil {
		err = srvErr
	}
	return err
}

// runDay executes one complete replay for one day: lock, ingest, run,
// persist, report, archive, notify.
func (a *App) runDay(ctx context.Context, deps *Dependencies, day string) error {
	logger := a.logger.With(slog.String("day", day))

	if deps.Locks != nil {
		ttl := time.Duration(a.cfg.Replay.LockTTLMinutes) * time.Minute
		unlock, err := deps.Locks.Acquire(ctx, "replay:day:"+day, ttl)
		if errors.Is(err, domain.ErrLockHeld) {
			logger.Warn("day already being replayed elsewhere, skipping")
			return nil
		}
		if err != nil {
			return fmt.Errorf("app: lock day %s: %w", day, err)
		}
		defer unlock()
	}

	ticks, err := feed.ReadFile(a.cfg.Data.File(day))
	if err != nil {
		_ = deps.Notifier.RunFailed(ctx, day, err)
		return fmt.Errorf("app: ingest day %s: %w", day, err)
	}

	strategies, err := deps.Registry.BuildSet(strategyConfigs(a.cfg), a.logger)
	if err != nil {
		return fmt.Errorf("app: build strategies: %w", err)
	}

	var sinks []engine.SnapshotSink
	if deps.Hub != nil {
		sinks = append(sinks, deps.Hub.Sink(day))
	}
	if deps.Progress != nil && a.cfg.Replay.ProgressEvery > 0 {
		sinks = append(sinks, &progressSink{
			ctx:   ctx,
			bus:   deps.Progress,
			day:   day,
			every: a.cfg.Replay.ProgressEvery,
		})
	}

	result, err := engine.NewReplay(day, strategies, sinks, a.logger).Run(ctx, ticks)
	if err != nil {
		_ = deps.Notifier.RunFailed(ctx, day, err)
		return fmt.Errorf("app: replay day %s: %w", day, err)
	}

	if err := a.persist(ctx, deps, result); err != nil {
		return err
	}

	if err := deps.Writer.WriteFills(day, result.Fills); err != nil {
		return err
	}
	if err := deps.Writer.WriteEquity(day, result.Equity); err != nil {
		return err
	}

	summary := report.Summarize(result)
	logger.Info("run complete", slog.String("summary", summary.String()))

	if a.cfg.Output.Archive && deps.Archiver != nil {
		paths := []string{deps.Writer.FillsPath(day), deps.Writer.EquityPath(day)}
		if err := deps.Archiver.ArchiveRun(ctx, result.Run.ID, paths); err != nil {
			return fmt.Errorf("app: archive day %s: %w", day, err)
		}
	}

	if err := deps.Notifier.RunFinished(ctx, summary); err != nil {
		logger.Warn("notify failed", slog.String("error", err.Error()))
	}
	return nil
}

// persist writes the run row, fill log, and equity curve when a database is
// configured.
func (a *App) persist(ctx context.Context, deps *Dependencies, result *domain.RunResult) error {
	if deps.RunStore == nil {
		return nil
	}

	created := result.Run
	created.Status = domain.RunStatusRunning
	created.FinishedAt = nil
	if err := deps.RunStore.Create(ctx, created); err != nil {
		return fmt.Errorf("app: persist run: %w", err)
	}
	if err := deps.FillStore.InsertBatch(ctx, result.Run.ID, result.Fills); err != nil {
		return fmt.Errorf("app: persist fills: %w", err)
	}
	if err := deps.EquityStore.InsertBatch(ctx, result.Run.ID, result.Equity); err != nil {
		return fmt.Errorf("app: persist equity: %w", err)
	}
	if err := deps.RunStore.Finish(ctx, result.Run); err != nil {
		return fmt.Errorf("app: finish run: %w", err)
	}
	return nil
}

// strategyConfigs maps TOML strategy blocks onto the strategy package's
// config type, preserving file order.
func strategyConfigs(cfg *config.Config) []strategy.Config {
	out := make([]strategy.Config, len(cfg.Strategies))
	for i, c := range cfg.Strategies {
		out[i] = strategy.Config{
			Name:    c.Name,
			Symbols: c.Symbols,
			Limits:  c.Limits,
			Params:  c.Params,
		}
	}
	return out
}

// progressSink publishes every Nth equity snapshot to the progress bus so
// external monitors can follow long runs.
type progressSink struct {
	ctx   context.Context
	bus   domain.ProgressBus
	day   string
	every int
	count int
}

func (p *progressSink) OnSnapshot(snap domain.EquitySnapshot) {
	p.count++
	if p.count%p.every != 0 {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"day":            p.day,
		"timestamp":      snap.Timestamp,
		"realized_pnl":   snap.Realized,
		"unrealized_pnl": snap.Unrealized,
		"total_pnl":      snap.Total,
	})
	if err != nil {
		return
	}
	_ = p.bus.Publish(p.ctx, "replay:progress:"+p.day, payload)
}
