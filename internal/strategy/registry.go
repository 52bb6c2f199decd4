package strategy

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/OtsoKarali/prosperity-replay/internal/engine"
)

// Factory builds a fresh strategy instance from configuration. Every replay
// run gets its own instances so signal history never leaks across runs.
type Factory func(cfg Config, logger *slog.Logger) engine.Strategy

// Registry manages a named collection of strategy factories. It is safe for
// concurrent use.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry returns a Registry preloaded with every built-in strategy.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("market_maker", func(cfg Config, l *slog.Logger) engine.Strategy { return NewMarketMaker(cfg, l) })
	r.Register("adaptive_maker", func(cfg Config, l *slog.Logger) engine.Strategy { return NewAdaptiveMaker(cfg, l) })
	r.Register("momentum", func(cfg Config, l *slog.Logger) engine.Strategy { return NewMomentum(cfg, l) })
	r.Register("mean_reversion", func(cfg Config, l *slog.Logger) engine.Strategy { return NewMeanReversion(cfg, l) })
	r.Register("basket_arb", func(cfg Config, l *slog.Logger) engine.Strategy { return NewBasketArb(cfg, l) })
	return r
}

// Register adds a factory under the given name, replacing any existing one.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Build instantiates the strategy registered under cfg.Name.
func (r *Registry) Build(cfg Config, logger *slog.Logger) (engine.Strategy, error) {
	r.mu.RLock()
	f, ok := r.factories[cfg.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("strategy %q: not registered", cfg.Name)
	}
	return f(cfg, logger), nil
}

// BuildSet instantiates one strategy per config, preserving the given order.
// The order matters: it is the engine's invocation and emission order.
func (r *Registry) BuildSet(cfgs []Config, logger *slog.Logger) ([]engine.Strategy, error) {
	out := make([]engine.Strategy, 0, len(cfgs))
	for _, cfg := range cfgs {
		s, err := r.Build(cfg, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// List returns the names of all registered strategies in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
