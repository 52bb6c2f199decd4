// Package strategy contains the signal generators replayed by the engine.
// Each strategy turns the current tick's books and its own position into an
// ordered list of order intents; all bookkeeping lives in the engine's
// ledger, never here. Variant behavior is configuration, not forked code.
package strategy

// Config holds per-strategy configuration. Limits gives the per-instrument
// position cap; Params carries strategy-specific tuning knobs.
type Config struct {
	Name    string           `toml:"name"`
	Symbols []string         `toml:"symbols"`
	Limits  map[string]int64 `toml:"limits"`
	Params  map[string]any   `toml:"params"`
}

// Limit returns the position limit for a symbol, or def when unconfigured.
func (c Config) Limit(symbol string, def int64) int64 {
	if l, ok := c.Limits[symbol]; ok {
		return l
	}
	return def
}

// floatParam reads a float64 tuning knob, tolerating TOML integer literals.
func (c Config) floatParam(key string, def float64) float64 {
	switch v := c.Params[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return def
	}
}

// intParam reads an integer tuning knob.
func (c Config) intParam(key string, def int64) int64 {
	switch v := c.Params[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return def
	}
}
