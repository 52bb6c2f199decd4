package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

const defaultPressureWindow = 10

// AdaptiveMaker makes a market in a single symbol around a fair value taken
// either from a configured static value or from the midpoint of the most
// popular (largest-volume) bid and ask. It tracks how long the position has
// been pinned at its limit in a boolean pressure window and force-rebalances
// inventory when the window saturates. Params:
//
//   - "fair_value" (int): static fair value; when absent the popular mid is used.
//   - "window_size" (int): pressure window length. Defaults to 10.
type AdaptiveMaker struct {
	cfg    Config
	symbol string
	window []bool
	logger *slog.Logger
}

// NewAdaptiveMaker creates an AdaptiveMaker for the first configured symbol.
func NewAdaptiveMaker(cfg Config, logger *slog.Logger) *AdaptiveMaker {
	symbol := ""
	if len(cfg.Symbols) > 0 {
		symbol = cfg.Symbols[0]
	}
	return &AdaptiveMaker{
		cfg:    cfg,
		symbol: symbol,
		logger: logger.With(slog.String("strategy", "adaptive_maker"), slog.String("symbol", symbol)),
	}
}

// Name returns the strategy identifier.
func (a *AdaptiveMaker) Name() string { return "adaptive_maker" }

// Init validates that a symbol was configured.
func (a *AdaptiveMaker) Init(_ context.Context) error {
	if a.symbol == "" {
		return fmt.Errorf("adaptive_maker: no symbol configured")
	}
	return nil
}

// OnTick quotes and, when pinned at the position limit, rebalances.
func (a *AdaptiveMaker) OnTick(_ context.Context, view domain.TickView) ([]domain.OrderIntent, error) {
	depth, ok := view.Depths[a.symbol]
	if !ok {
		return nil, nil
	}

	pos := view.Position(a.symbol)
	limit := a.cfg.Limit(a.symbol, 50)
	toBuy := limit - pos
	toSell := limit + pos

	trueValue, ok := a.fairValue(depth)
	if !ok {
		return nil, nil
	}

	windowSize := int(a.cfg.intParam("window_size", defaultPressureWindow))
	a.window = append(a.window, abs(pos) == limit)
	if len(a.window) > windowSize {
		a.window = a.window[1:]
	}

	// Two escalation tiers once the window is full: emergency rebalance when
	// the position has been pinned every tick, risk-off when pinned at least
	// half the window and still pinned now.
	full := len(a.window) == windowSize
	pinned := 0
	for _, b := range a.window {
		if b {
			pinned++
		}
	}
	emergency := full && pinned == windowSize
	riskOff := full && pinned >= windowSize/2 && a.window[len(a.window)-1]

	// Back off the aggressive quote when inventory is already heavy.
	maxBuyPrice := trueValue
	if float64(pos) > float64(limit)*0.5 {
		maxBuyPrice = trueValue - 1
	}
	minSellPrice := trueValue
	if float64(pos) < -float64(limit)*0.5 {
		minSellPrice = trueValue + 1
	}

	var intents []domain.OrderIntent

	// Take resting asks priced at or under our ceiling.
	for _, price := range depth.AskPrices() {
		if toBuy <= 0 || price > maxBuyPrice {
			break
		}
		qty := min64(toBuy, depth.AskQty(price))
		intents = append(intents, domain.OrderIntent{Symbol: a.symbol, Price: price, Quantity: qty})
		toBuy -= qty
	}
	if toBuy > 0 && emergency {
		qty := toBuy / 2
		intents = append(intents, domain.OrderIntent{Symbol: a.symbol, Price: trueValue, Quantity: qty})
		toBuy -= qty
	}
	if toBuy > 0 && riskOff {
		qty := toBuy / 2
		intents = append(intents, domain.OrderIntent{Symbol: a.symbol, Price: trueValue - 2, Quantity: qty})
		toBuy -= qty
	}
	if toBuy > 0 && depth.HasBids() {
		popularBid, _ := popularLevel(depth.BidPrices(), depth.BidQty)
		price := min64(maxBuyPrice, popularBid+1)
		intents = append(intents, domain.OrderIntent{Symbol: a.symbol, Price: price, Quantity: toBuy})
	}

	// Hit resting bids priced at or over our floor.
	for _, price := range depth.BidPrices() {
		if toSell <= 0 || price < minSellPrice {
			break
		}
		qty := min64(toSell, depth.BidQty(price))
		intents = append(intents, domain.OrderIntent{Symbol: a.symbol, Price: price, Quantity: -qty})
		toSell -= qty
	}
	if toSell > 0 && emergency {
		qty := toSell / 2
		intents = append(intents, domain.OrderIntent{Symbol: a.symbol, Price: trueValue, Quantity: -qty})
		toSell -= qty
	}
	if toSell > 0 && riskOff {
		qty := toSell / 2
		intents = append(intents, domain.OrderIntent{Symbol: a.symbol, Price: trueValue + 2, Quantity: -qty})
		toSell -= qty
	}
	if toSell > 0 && depth.HasAsks() {
		popularAsk, _ := popularLevel(depth.AskPrices(), depth.AskQty)
		price := max64(minSellPrice, popularAsk-1)
		intents = append(intents, domain.OrderIntent{Symbol: a.symbol, Price: price, Quantity: -toSell})
	}

	return intents, nil
}

// Close is a no-op.
func (a *AdaptiveMaker) Close() error { return nil }

// fairValue returns the configured static fair value, or the rounded midpoint
// of the most popular bid and ask.
func (a *AdaptiveMaker) fairValue(depth *domain.BookDepth) (int64, bool) {
	if fv := a.cfg.intParam("fair_value", 0); fv != 0 {
		return fv, true
	}
	if !depth.HasBids() || !depth.HasAsks() {
		return 0, false
	}
	popularBid, _ := popularLevel(depth.BidPrices(), depth.BidQty)
	popularAsk, _ := popularLevel(depth.AskPrices(), depth.AskQty)
	return int64(math.Round(float64(popularBid+popularAsk) / 2)), true
}

// popularLevel returns the price with the largest resting quantity, scanning
// best-first so ties resolve toward the better price.
func popularLevel(prices []int64, qtyAt func(int64) int64) (price, qty int64) {
	for _, p := range prices {
		if q := qtyAt(p); q > qty {
			price, qty = p, q
		}
	}
	return price, qty
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
