// Package config defines the top-level configuration for the replay tool and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by REPLAY_* environment variables.
type Config struct {
	Data       DataConfig       `toml:"data"`
	Output     OutputConfig     `toml:"output"`
	Replay     ReplayConfig     `toml:"replay"`
	Strategies []StrategyConfig `toml:"strategies"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// DataConfig locates the input price files.
type DataConfig struct {
	// Dir is the directory holding the price CSVs.
	Dir string `toml:"dir"`
	// Pattern is the file name pattern with one %s verb for the day,
	// e.g. "prices_round_2_day_%s.csv".
	Pattern string `toml:"pattern"`
	// Days lists the day identifiers to replay.
	Days []string `toml:"days"`
}

// File returns the price file path for a day.
func (d DataConfig) File(day string) string {
	return strings.TrimRight(d.Dir, "/") + "/" + fmt.Sprintf(d.Pattern, day)
}

// OutputConfig controls local result files and archiving.
type OutputConfig struct {
	Dir     string `toml:"dir"`
	Archive bool   `toml:"archive"`
}

// ReplayConfig holds engine-level knobs.
type ReplayConfig struct {
	// ProgressEvery publishes a progress snapshot every N ticks; 0 disables.
	ProgressEvery int `toml:"progress_every"`
	// Parallelism caps concurrent day replays in batch mode. 0 means one
	// worker per day.
	Parallelism int `toml:"parallelism"`
	// LockTTLMinutes is the per-day replay lock TTL when Redis is configured.
	LockTTLMinutes int `toml:"lock_ttl_minutes"`
}

// StrategyConfig configures one strategy instance. Order in the TOML file is
// the engine's invocation order.
type StrategyConfig struct {
	Name    string           `toml:"name"`
	Symbols []string         `toml:"symbols"`
	Limits  map[string]int64 `toml:"limits"`
	Params  map[string]any   `toml:"params"`
}

// PostgresConfig holds PostgreSQL connection parameters. Leave empty to run
// without persistence.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// Enabled reports whether any connection target was configured.
func (p PostgresConfig) Enabled() bool {
	return p.DSN != "" || p.Host != ""
}

// RedisConfig holds Redis connection parameters. Leave empty to run without
// cross-process coordination.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// S3Config holds S3-compatible object storage parameters for archiving.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// Enabled reports whether a bucket was configured.
func (s S3Config) Enabled() bool { return s.Bucket != "" }

// ServerConfig controls the live monitor WebSocket server.
type ServerConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
}

// Defaults returns the built-in configuration baseline.
func Defaults() Config {
	return Config{
		Data: DataConfig{
			Dir:     "data",
			Pattern: "prices_round_2_day_%s.csv",
			Days:    []string{"0"},
		},
		Output: OutputConfig{
			Dir: "results",
		},
		Replay: ReplayConfig{
			ProgressEvery:  100,
			LockTTLMinutes: 30,
		},
		Postgres: PostgresConfig{
			SSLMode:      "disable",
			PoolMaxConns: 4,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Mode:     "replay",
		LogLevel: "info",
	}
}

// Validate checks the configuration for inconsistencies that would only
// surface mid-run.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case "replay", "batch":
	default:
		return fmt.Errorf("config: unsupported mode %q", c.Mode)
	}

	if c.Data.Dir == "" {
		return fmt.Errorf("config: data.dir is required")
	}
	if !strings.Contains(c.Data.Pattern, "%s") {
		return fmt.Errorf("config: data.pattern must contain a %%s day placeholder")
	}
	if len(c.Data.Days) == 0 {
		return fmt.Errorf("config: data.days must list at least one day")
	}
	if len(c.Strategies) == 0 {
		return fmt.Errorf("config: at least one strategy must be configured")
	}
	for i, s := range c.Strategies {
		if s.Name == "" {
			return fmt.Errorf("config: strategies[%d]: name is required", i)
		}
	}
	if c.Output.Archive && !c.S3.Enabled() {
		return fmt.Errorf("config: output.archive requires an s3 bucket")
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr is required when the server is enabled")
	}
	return nil
}
