package strategy

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

const (
	defaultOrderSize     int64   = 5
	defaultTickOffset    float64 = 2
	defaultInventoryBias float64 = 0.1
)

// MarketMaker quotes a fixed tick offset around a fair value estimated from
// the mid price, skewing both quotes against its inventory so a growing
// position prices itself out of further accumulation. Params:
//
//   - "order_size" (int): base quote size. Defaults to 5.
//   - "tick_offset" (float): distance from fair value. Defaults to 2.
//   - "inventory_bias" (float): price shift per unit of inventory. Defaults to 0.1.
type MarketMaker struct {
	cfg    Config
	logger *slog.Logger
}

// NewMarketMaker creates a MarketMaker over the configured symbols.
func NewMarketMaker(cfg Config, logger *slog.Logger) *MarketMaker {
	return &MarketMaker{
		cfg:    cfg,
		logger: logger.With(slog.String("strategy", "market_maker")),
	}
}

// Name returns the strategy identifier.
func (m *MarketMaker) Name() string { return "market_maker" }

// Init is a no-op; MarketMaker carries no cross-tick state.
func (m *MarketMaker) Init(_ context.Context) error { return nil }

// OnTick quotes both sides of every configured symbol with a book this tick.
func (m *MarketMaker) OnTick(_ context.Context, view domain.TickView) ([]domain.OrderIntent, error) {
	orderSize := m.cfg.intParam("order_size", defaultOrderSize)
	tickOffset := m.cfg.floatParam("tick_offset", defaultTickOffset)
	bias := m.cfg.floatParam("inventory_bias", defaultInventoryBias)

	var intents []domain.OrderIntent
	for _, symbol := range m.symbols(view) {
		depth, ok := view.Depths[symbol]
		if !ok {
			continue
		}

		fair, ok := fairFromBook(depth)
		if !ok {
			continue
		}

		pos := view.Position(symbol)
		limit := m.cfg.Limit(symbol, 20)

		// Inventory skew: long inventory lowers both quotes, short raises them.
		skew := -bias * float64(pos)
		buyPrice := int64(math.Round(fair - tickOffset + skew))
		sellPrice := int64(math.Round(fair + tickOffset + skew))

		maxBuy := min64(orderSize, limit-pos)
		maxSell := min64(orderSize, limit+pos)

		if maxBuy > 0 {
			intents = append(intents, domain.OrderIntent{Symbol: symbol, Price: buyPrice, Quantity: maxBuy})
		}
		if maxSell > 0 {
			intents = append(intents, domain.OrderIntent{Symbol: symbol, Price: sellPrice, Quantity: -maxSell})
		}
	}
	return intents, nil
}

// Close is a no-op.
func (m *MarketMaker) Close() error { return nil }

// symbols returns the configured symbols, or every symbol in the tick when
// none are configured, in sorted order for deterministic emission.
func (m *MarketMaker) symbols(view domain.TickView) []string {
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

// fairFromBook estimates fair value as the mid when both sides exist,
// falling back to the surviving side of a one-sided book.
func fairFromBook(depth *domain.BookDepth) (float64, bool) {
	if mid, ok := depth.Mid(); ok {
		return mid, true
	}
	if bid, ok := depth.BestBid(); ok {
		return float64(bid), true
	}
	if ask, ok := depth.BestAsk(); ok {
		return float64(ask), true
	}
	return 0, false
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
