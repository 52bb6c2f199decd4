package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleTOML = `
mode = "batch"
log_level = "debug"

[data]
dir = "testdata"
pattern = "prices_round_2_day_%s.csv"
days = ["-1", "0", "1"]

[output]
dir = "out"

[replay]
progress_every = 50
parallelism = 2

[[strategies]]
name = "market_maker"
symbols = ["KELP"]

[strategies.limits]
KELP = 20

[strategies.params]
order_size = 5
inventory_bias = 0.1

[[strategies]]
name = "basket_arb"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMergesOverDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleTOML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Mode != "batch" || cfg.LogLevel != "debug" {
		t.Fatalf("top-level fields not loaded: %+v", cfg)
	}
	if len(cfg.Data.Days) != 3 || cfg.Data.Days[0] != "-1" {
		t.Fatalf("days not loaded: %v", cfg.Data.Days)
	}
	if cfg.Replay.Parallelism != 2 || cfg.Replay.ProgressEvery != 50 {
		t.Fatalf("replay knobs not loaded: %+v", cfg.Replay)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Addr != ":8080" || cfg.Postgres.SSLMode != "disable" {
		t.Fatalf("defaults lost: %+v", cfg)
	}

	if len(cfg.Strategies) != 2 {
		t.Fatalf("expected 2 strategies in file order, got %d", len(cfg.Strategies))
	}
	first := cfg.Strategies[0]
	if first.Name != "market_maker" || first.Limits["KELP"] != 20 {
		t.Fatalf("strategy block not loaded: %+v", first)
	}
	if v, ok := first.Params["order_size"].(int64); !ok || v != 5 {
		t.Fatalf("integer param not decoded as int64: %#v", first.Params["order_size"])
	}
	if v, ok := first.Params["inventory_bias"].(float64); !ok || v != 0.1 {
		t.Fatalf("float param not decoded as float64: %#v", first.Params["inventory_bias"])
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REPLAY_POSTGRES_DSN", "postgres://replay:secret@db:5432/replay")
	t.Setenv("REPLAY_MODE", "replay")
	t.Setenv("REPLAY_REDIS_DB", "3")

	cfg, err := Load(writeConfig(t, sampleTOML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Postgres.DSN != "postgres://replay:secret@db:5432/replay" {
		t.Fatalf("DSN override not applied: %q", cfg.Postgres.DSN)
	}
	if cfg.Mode != "replay" {
		t.Fatalf("mode override not applied: %q", cfg.Mode)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("redis db override not applied: %d", cfg.Redis.DB)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Defaults()
		cfg.Strategies = []StrategyConfig{{Name: "market_maker"}}
		return &cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("baseline config should validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "paper" }},
		{"missing data dir", func(c *Config) { c.Data.Dir = "" }},
		{"pattern without placeholder", func(c *Config) { c.Data.Pattern = "prices.csv" }},
		{"no days", func(c *Config) { c.Data.Days = nil }},
		{"no strategies", func(c *Config) { c.Strategies = nil }},
		{"unnamed strategy", func(c *Config) { c.Strategies = []StrategyConfig{{}} }},
		{"archive without bucket", func(c *Config) { c.Output.Archive = true }},
		{"server without addr", func(c *Config) { c.Server.Enabled = true; c.Server.Addr = "" }},
	}
	for _, tc := range cases {
		cfg := valid()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected a validation error", tc.name)
		}
	}
}

func TestDataFile(t *testing.T) {
	d := DataConfig{Dir: "data/", Pattern: "prices_round_2_day_%s.csv"}
	if got := d.File("-1"); got != "data/prices_round_2_day_-1.csv" {
		t.Fatalf("unexpected path %q", got)
	}
}
