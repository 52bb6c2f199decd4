package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/OtsoKarali/prosperity-replay/internal/blob/s3"
	"github.com/OtsoKarali/prosperity-replay/internal/cache/redis"
	"github.com/OtsoKarali/prosperity-replay/internal/config"
	"github.com/OtsoKarali/prosperity-replay/internal/domain"
	"github.com/OtsoKarali/prosperity-replay/internal/notify"
	"github.com/OtsoKarali/prosperity-replay/internal/report"
	"github.com/OtsoKarali/prosperity-replay/internal/server/ws"
	"github.com/OtsoKarali/prosperity-replay/internal/store/postgres"
	"github.com/OtsoKarali/prosperity-replay/internal/strategy"
)

// Dependencies bundles everything the operating modes need. Optional
// collaborators (stores, locks, archiver, hub) are nil when unconfigured;
// the replay itself never requires them.
type Dependencies struct {
	Registry *strategy.Registry
	Writer   *report.Writer

	RunStore    domain.RunStore
	FillStore   domain.FillStore
	EquityStore domain.EquityStore

	Locks    domain.LockManager
	Progress domain.ProgressBus

	Archiver *s3blob.Archiver
	Notifier *notify.Notifier
	Hub      *ws.Hub
}

// Wire constructs concrete dependency implementations from the configuration
// and returns them with a cleanup function for shutdown.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	writer, err := report.NewWriter(cfg.Output.Dir)
	if err != nil {
		return nil, nil, err
	}

	deps := &Dependencies{
		Registry: strategy.NewRegistry(),
		Writer:   writer,
	}

	// --- PostgreSQL (optional result persistence) ---
	if cfg.Postgres.Enabled() {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.RunStore = postgres.NewRunStore(pool)
		deps.FillStore = postgres.NewFillStore(pool)
		deps.EquityStore = postgres.NewEquityStore(pool)
	}

	// --- Redis (optional batch coordination) ---
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Locks = redis.NewLockManager(redisClient)
		deps.Progress = redis.NewProgressBus(redisClient)
	}

	// --- S3 (optional artifact archiving) ---
	if cfg.S3.Enabled() {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client))
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, logger)

	// --- Monitor server hub ---
	if cfg.Server.Enabled {
		deps.Hub = ws.NewHub(logger)
		closers = append(closers, deps.Hub.Close)
	}

	return deps, cleanup, nil
}
