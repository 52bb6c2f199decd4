package strategy

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeView(depths map[string]*domain.BookDepth, positions map[string]int64) domain.TickView {
	if positions == nil {
		positions = map[string]int64{}
	}
	return domain.TickView{Timestamp: 0, Depths: depths, Positions: positions}
}

func makeBook(bid, bidQty, ask, askQty int64) *domain.BookDepth {
	d := domain.NewBookDepth()
	d.AddBid(bid, bidQty)
	d.AddAsk(ask, askQty)
	return d
}

func TestMarketMakerQuotesBothSides(t *testing.T) {
	mm := NewMarketMaker(Config{Name: "market_maker", Symbols: []string{"KELP"}}, testLogger())

	view := makeView(map[string]*domain.BookDepth{"KELP": makeBook(99, 10, 101, 10)}, nil)
	intents, err := mm.OnTick(context.Background(), view)
	if err != nil {
		t.Fatalf("on tick: %v", err)
	}

	if len(intents) != 2 {
		t.Fatalf("expected a bid and an offer, got %+v", intents)
	}
	// Fair value 100, offset 2, no inventory.
	if intents[0].Price != 98 || intents[0].Quantity != 5 {
		t.Fatalf("unexpected buy quote: %+v", intents[0])
	}
	if intents[1].Price != 102 || intents[1].Quantity != -5 {
		t.Fatalf("unexpected sell quote: %+v", intents[1])
	}
}

func TestMarketMakerInventorySkew(t *testing.T) {
	mm := NewMarketMaker(Config{Name: "market_maker", Symbols: []string{"KELP"}}, testLogger())

	view := makeView(
		map[string]*domain.BookDepth{"KELP": makeBook(99, 10, 101, 10)},
		map[string]int64{"KELP": 10},
	)
	intents, err := mm.OnTick(context.Background(), view)
	if err != nil {
		t.Fatalf("on tick: %v", err)
	}

	// Long 10 with bias 0.1 shifts both quotes down one tick.
	if intents[0].Price != 97 {
		t.Fatalf("expected skewed buy quote 97, got %+v", intents[0])
	}
	if intents[1].Price != 101 {
		t.Fatalf("expected skewed sell quote 101, got %+v", intents[1])
	}
}

func TestMarketMakerRespectsPositionLimit(t *testing.T) {
	cfg := Config{
		Name:    "market_maker",
		Symbols: []string{"KELP"},
		Limits:  map[string]int64{"KELP": 10},
	}
	mm := NewMarketMaker(cfg, testLogger())

	view := makeView(
		map[string]*domain.BookDepth{"KELP": makeBook(99, 10, 101, 10)},
		map[string]int64{"KELP": 10},
	)
	intents, err := mm.OnTick(context.Background(), view)
	if err != nil {
		t.Fatalf("on tick: %v", err)
	}

	for _, in := range intents {
		if in.Quantity > 0 {
			t.Fatalf("at the long limit no buy quote may be emitted: %+v", in)
		}
	}
	// Room to sell is limit + pos = 20, capped at order size 5.
	if len(intents) != 1 || intents[0].Quantity != -5 {
		t.Fatalf("expected a single 5-lot offer, got %+v", intents)
	}
}

func TestMarketMakerSkipsBooklessSymbols(t *testing.T) {
	mm := NewMarketMaker(Config{Name: "market_maker", Symbols: []string{"GHOST"}}, testLogger())

	view := makeView(map[string]*domain.BookDepth{"KELP": makeBook(99, 10, 101, 10)}, nil)
	intents, err := mm.OnTick(context.Background(), view)
	if err != nil {
		t.Fatalf("on tick: %v", err)
	}
	if len(intents) != 0 {
		t.Fatalf("expected no intents for a symbol without a book, got %+v", intents)
	}
}

func TestMarketMakerFallsBackToTickSymbols(t *testing.T) {
	mm := NewMarketMaker(Config{Name: "market_maker"}, testLogger())

	view := makeView(map[string]*domain.BookDepth{
		"INK":  makeBook(49, 5, 51, 5),
		"KELP": makeBook(99, 10, 101, 10),
	}, nil)
	intents, err := mm.OnTick(context.Background(), view)
	if err != nil {
		t.Fatalf("on tick: %v", err)
	}

	// Both instruments quoted, sorted by symbol for determinism.
	if len(intents) != 4 {
		t.Fatalf("expected quotes on both instruments, got %+v", intents)
	}
	if intents[0].Symbol != "INK" || intents[2].Symbol != "KELP" {
		t.Fatalf("expected deterministic symbol order, got %+v", intents)
	}
}
