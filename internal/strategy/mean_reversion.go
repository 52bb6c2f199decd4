package strategy

import (
	"context"
	"log/slog"
	"sort"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

const (
	defaultSMAWindow       int64   = 20
	defaultZScoreThreshold float64 = 1.5
	defaultExitThreshold   float64 = 0.3
	defaultMinSpread       int64   = 2
	defaultClipSize        int64   = 10
)

// MeanReversion fades z-score extremes of the mid price against its trailing
// SMA: it bids one tick inside the spread when oversold, offers one tick
// inside when overbought, and gradually unwinds at the touch once the price
// has drifted back toward the mean. Thin spreads are skipped since there is
// no edge to capture inside them. Params:
//
//   - "sma_window" (int): trailing window length. Defaults to 20.
//   - "zscore_threshold" (float): entry trigger. Defaults to 1.5.
//   - "exit_threshold" (float): unwind trigger. Defaults to 0.3.
//   - "min_spread" (int): minimum bid/ask spread to trade. Defaults to 2.
//   - "clip_size" (int): maximum order size per tick. Defaults to 10.
type MeanReversion struct {
	cfg     Config
	history *History
	logger  *slog.Logger
}

// NewMeanReversion creates a MeanReversion strategy.
func NewMeanReversion(cfg Config, logger *slog.Logger) *MeanReversion {
	return &MeanReversion{
		cfg:     cfg,
		history: NewHistory(int(cfg.intParam("sma_window", defaultSMAWindow))),
		logger:  logger.With(slog.String("strategy", "mean_reversion")),
	}
}

// Name returns the strategy identifier.
func (mr *MeanReversion) Name() string { return "mean_reversion" }

// Init is a no-op; history starts empty each run.
func (mr *MeanReversion) Init(_ context.Context) error { return nil }

// OnTick updates history and emits at most one entry or exit order per symbol.
func (mr *MeanReversion) OnTick(_ context.Context, view domain.TickView) ([]domain.OrderIntent, error) {
	entry := mr.cfg.floatParam("zscore_threshold", defaultZScoreThreshold)
	exit := mr.cfg.floatParam("exit_threshold", defaultExitThreshold)
	minSpread := mr.cfg.intParam("min_spread", defaultMinSpread)
	clip := mr.cfg.intParam("clip_size", defaultClipSize)

	var intents []domain.OrderIntent
	for _, symbol := range mr.symbols(view) {
		depth, ok := view.Depths[symbol]
		if !ok || !depth.HasBids() || !depth.HasAsks() {
			continue
		}

		bestBid, _ := depth.BestBid()
		bestAsk, _ := depth.BestAsk()
		if bestAsk-bestBid < minSpread {
			continue
		}

		mid, _ := depth.Mid()
		mr.history.Push(symbol, mid)
		z := mr.history.ZScore(symbol, mid)

		pos := view.Position(symbol)
		limit := mr.cfg.Limit(symbol, 50)
		remainingBuy := limit - pos
		remainingSell := limit + pos

		switch {
		case z <= -entry && remainingBuy > 0:
			price := bestAsk
			if bestAsk-1 > bestBid {
				price = bestAsk - 1
			}
			intents = append(intents, domain.OrderIntent{Symbol: symbol, Price: price, Quantity: min64(clip, remainingBuy)})

		case z >= entry && remainingSell > 0:
			price := bestBid
			if bestBid+1 < bestAsk {
				price = bestBid + 1
			}
			intents = append(intents, domain.OrderIntent{Symbol: symbol, Price: price, Quantity: -min64(clip, remainingSell)})

		case pos > 0 && z > -exit:
			intents = append(intents, domain.OrderIntent{Symbol: symbol, Price: bestBid, Quantity: -min64(clip, pos)})

		case pos < 0 && z < exit:
			intents = append(intents, domain.OrderIntent{Symbol: symbol, Price: bestAsk, Quantity: min64(clip, -pos)})
		}
	}
	return intents, nil
}

// Close is a no-op.
func (mr *MeanReversion) Close() error { return nil }

func (mr *MeanReversion) symbols(view domain.TickView) []string {
	if len(mr.cfg.Symbols) > 0 {
		return mr.cfg.Symbols
	}
	out := make([]string, 0, len(view.Depths))
	for sym := range view.Depths {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
