package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies REPLAY_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known REPLAY_* environment variables and
// overwrites the corresponding Config fields when set. This lets operators
// inject credentials at deploy time without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "REPLAY_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "REPLAY_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "REPLAY_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "REPLAY_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "REPLAY_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "REPLAY_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "REPLAY_POSTGRES_SSLMODE")
	setBool(&cfg.Postgres.RunMigrations, "REPLAY_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "REPLAY_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "REPLAY_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REPLAY_REDIS_DB")
	setBool(&cfg.Redis.TLSEnabled, "REPLAY_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "REPLAY_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "REPLAY_S3_REGION")
	setStr(&cfg.S3.Bucket, "REPLAY_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "REPLAY_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "REPLAY_S3_SECRET_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "REPLAY_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "REPLAY_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "REPLAY_NOTIFY_DISCORD_WEBHOOK_URL")

	// ── Top level ──
	setStr(&cfg.Mode, "REPLAY_MODE")
	setStr(&cfg.LogLevel, "REPLAY_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
