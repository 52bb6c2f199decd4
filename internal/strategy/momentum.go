package strategy

import (
	"context"
	"log/slog"
	"sort"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

const (
	defaultMomentumBuffer    int64   = 5
	defaultMomentumThreshold float64 = 1.0
)

// Momentum takes liquidity aggressively when the mid price has trended over
// the last few ticks and the book's volume imbalance agrees: it lifts the
// best ask on upward momentum backed by heavier ask-side volume, and hits
// the best bid on the mirror condition. Params:
//
//   - "buffer_size" (int): mid-price history length for momentum. Defaults to 5.
//   - "momentum_threshold" (float): minimum trend magnitude. Defaults to 1.0.
type Momentum struct {
	cfg     Config
	history *History
	logger  *slog.Logger
}

// NewMomentum creates a Momentum strategy.
func NewMomentum(cfg Config, logger *slog.Logger) *Momentum {
	return &Momentum{
		cfg:     cfg,
		history: NewHistory(int(cfg.intParam("buffer_size", defaultMomentumBuffer))),
		logger:  logger.With(slog.String("strategy", "momentum")),
	}
}

// Name returns the strategy identifier.
func (m *Momentum) Name() string { return "momentum" }

// Init is a no-op; history starts empty each run.
func (m *Momentum) Init(_ context.Context) error { return nil }

// OnTick updates the mid-price history and emits at most one aggressive
// order per symbol.
func (m *Momentum) OnTick(_ context.Context, view domain.TickView) ([]domain.OrderIntent, error) {
	threshold := m.cfg.floatParam("momentum_threshold", defaultMomentumThreshold)

	var intents []domain.OrderIntent
	for _, symbol := range m.symbols(view) {
		depth, ok := view.Depths[symbol]
		if !ok || !depth.HasBids() || !depth.HasAsks() {
			continue
		}

		mid, _ := depth.Mid()
		m.history.Push(symbol, mid)

		momentum := m.history.Momentum(symbol)
		bidVolume := depth.BidVolume()
		askVolume := depth.AskVolume()
		volumeRatio := float64(askVolume) / (float64(bidVolume) + 1e-6)

		pos := view.Position(symbol)
		limit := m.cfg.Limit(symbol, 50)
		bestBid, _ := depth.BestBid()
		bestAsk, _ := depth.BestAsk()

		switch {
		case momentum > threshold && volumeRatio > 1.1 && pos < limit:
			qty := min64(limit-pos, depth.AskQty(bestAsk))
			if qty > 0 {
				intents = append(intents, domain.OrderIntent{Symbol: symbol, Price: bestAsk, Quantity: qty})
			}
		case momentum < -threshold && volumeRatio < 0.9 && pos > -limit:
			qty := min64(pos+limit, depth.BidQty(bestBid))
			if qty > 0 {
				intents = append(intents, domain.OrderIntent{Symbol: symbol, Price: bestBid, Quantity: -qty})
			}
		}
	}
	return intents, nil
}

// Close is a no-op.
func (m *Momentum) Close() error { return nil }

func (m *Momentum) symbols(view domain.TickView) []string {
	if len(m.cfg.Symbols) > 0 {
		return m.cfg.Symbols
	}
	out := make([]string, 0, len(view.Depths))
	for sym := range view.Depths {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
