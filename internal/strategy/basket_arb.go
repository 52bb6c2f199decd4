package strategy

import (
	"context"
	"log/slog"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

const (
	defaultBasketZEntry float64 = 0.35
	defaultBasketZExit  float64 = 0.2
	defaultSpreadMean   float64 = 50
	defaultSpreadStd    float64 = 85
)

// basketWeights is the composition of PICNIC_BASKET1 in its components.
var basketWeights = map[string]int64{
	"CROISSANTS": 6,
	"JAMS":       3,
	"DJEMBES":    1,
}

const basketSymbol = "PICNIC_BASKET1"

// BasketArb trades the spread between a composite basket instrument and the
// weighted sum of its components. When the spread's z-score (against a
// calibrated historical mean and std) stretches past the entry threshold it
// sells the rich leg and buys the cheap one with market orders, and unwinds
// everything once the spread normalizes. Params:
//
//   - "z_entry" (float): entry threshold. Defaults to 0.35.
//   - "z_exit" (float): exit threshold. Defaults to 0.2.
//   - "spread_mean" (float): calibrated spread mean. Defaults to 50.
//   - "spread_std" (float): calibrated spread std. Defaults to 85.
type BasketArb struct {
	cfg        Config
	inPosition bool
	lastZ      float64
	logger     *slog.Logger
}

// NewBasketArb creates a BasketArb strategy.
func NewBasketArb(cfg Config, logger *slog.Logger) *BasketArb {
	return &BasketArb{
		cfg:    cfg,
		logger: logger.With(slog.String("strategy", "basket_arb")),
	}
}

// Name returns the strategy identifier.
func (b *BasketArb) Name() string { return "basket_arb" }

// Init resets the entry flag.
func (b *BasketArb) Init(_ context.Context) error {
	b.inPosition = false
	return nil
}

// LastZ returns the most recent spread z-score, for logging and tests.
func (b *BasketArb) LastZ() float64 { return b.lastZ }

// OnTick evaluates the basket spread and emits entry or exit market orders.
func (b *BasketArb) OnTick(_ context.Context, view domain.TickView) ([]domain.OrderIntent, error) {
	mids := make(map[string]float64, len(basketWeights)+1)
	for sym := range basketWeights {
		mid, ok := midOf(view, sym)
		if !ok {
			return nil, nil
		}
		mids[sym] = mid
	}
	basketMid, ok := midOf(view, basketSymbol)
	if !ok {
		return nil, nil
	}

	fairValue := 0.0
	for sym, w := range basketWeights {
		fairValue += float64(w) * mids[sym]
	}
	spread := basketMid - fairValue

	mean := b.cfg.floatParam("spread_mean", defaultSpreadMean)
	std := b.cfg.floatParam("spread_std", defaultSpreadStd)
	if std == 0 {
		return nil, nil
	}
	z := (spread - mean) / std
	b.lastZ = z

	zEntry := b.cfg.floatParam("z_entry", defaultBasketZEntry)
	zExit := b.cfg.floatParam("z_exit", defaultBasketZExit)

	if !b.inPosition {
		switch {
		case z > zEntry:
			// Basket rich: sell it, buy the components.
			b.inPosition = true
			b.logger.Debug("basket entry short", slog.Float64("z", z))
			return b.entry(-1), nil
		case z < -zEntry:
			// Basket cheap: buy it, sell the components.
			b.inPosition = true
			b.logger.Debug("basket entry long", slog.Float64("z", z))
			return b.entry(1), nil
		}
		return nil, nil
	}

	if z < zExit && z > -zExit {
		b.inPosition = false
		b.logger.Debug("basket exit", slog.Float64("z", z))
		return b.exitAll(view), nil
	}
	return nil, nil
}

// Close is a no-op.
func (b *BasketArb) Close() error { return nil }

// entry emits one basket unit and its offsetting component legs, basket leg
// first, as market orders. dir is +1 to buy the basket, -1 to sell it.
func (b *BasketArb) entry(dir int64) []domain.OrderIntent {
	intents := []domain.OrderIntent{
		{Symbol: basketSymbol, Price: domain.MarketPrice, Quantity: dir},
	}
	for _, sym := range []string{"CROISSANTS", "JAMS", "DJEMBES"} {
		intents = append(intents, domain.OrderIntent{
			Symbol:   sym,
			Price:    domain.MarketPrice,
			Quantity: -dir * basketWeights[sym],
		})
	}
	return intents
}

// exitAll neutralizes whatever inventory the legs accumulated, which may
// differ from the entry sizes when fills were partial.
func (b *BasketArb) exitAll(view domain.TickView) []domain.OrderIntent {
	var intents []domain.OrderIntent
	for _, sym := range []string{basketSymbol, "CROISSANTS", "JAMS", "DJEMBES"} {
		pos := view.Position(sym)
		if pos == 0 {
			continue
		}
		intents = append(intents, domain.OrderIntent{
			Symbol:   sym,
			Price:    domain.MarketPrice,
			Quantity: -pos,
		})
	}
	return intents
}

func midOf(view domain.TickView, symbol string) (float64, bool) {
	depth, ok := view.Depths[symbol]
	if !ok {
		return 0, false
	}
	return depth.Mid()
}
