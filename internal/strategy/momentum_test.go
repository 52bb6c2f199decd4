package strategy

import (
	"context"
	"testing"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

// feedMids pushes a sequence of two-sided books through the strategy so its
// history fills, discarding the intermediate intents.
func feedMids(t *testing.T, m *Momentum, symbol string, mids []int64, askHeavy bool) []domain.OrderIntent {
	t.Helper()
	var last []domain.OrderIntent
	for _, mid := range mids {
		bidQty, askQty := int64(10), int64(10)
		if askHeavy {
			askQty = 20
		} else {
			bidQty = 20
		}
		book := domain.NewBookDepth()
		book.AddBid(mid-1, bidQty)
		book.AddAsk(mid+1, askQty)
		view := makeView(map[string]*domain.BookDepth{symbol: book}, nil)

		var err error
		last, err = m.OnTick(context.Background(), view)
		if err != nil {
			t.Fatalf("on tick at mid %d: %v", mid, err)
		}
	}
	return last
}

func TestMomentumBuysIntoConfirmedUptrend(t *testing.T) {
	m := NewMomentum(Config{Name: "momentum", Symbols: []string{"KELP"}}, testLogger())

	// Five rising mids fill the buffer; momentum 4 > threshold 1, ask-heavy
	// volume confirms.
	intents := feedMids(t, m, "KELP", []int64{100, 101, 102, 103, 104}, true)

	if len(intents) != 1 {
		t.Fatalf("expected one aggressive buy, got %+v", intents)
	}
	if intents[0].Price != 105 || intents[0].Quantity != 20 {
		t.Fatalf("expected to lift the full best ask, got %+v", intents[0])
	}
}

func TestMomentumSellsIntoConfirmedDowntrend(t *testing.T) {
	m := NewMomentum(Config{Name: "momentum", Symbols: []string{"KELP"}}, testLogger())

	intents := feedMids(t, m, "KELP", []int64{104, 103, 102, 101, 100}, false)

	if len(intents) != 1 || intents[0].Quantity >= 0 {
		t.Fatalf("expected one aggressive sell, got %+v", intents)
	}
	if intents[0].Price != 99 {
		t.Fatalf("expected to hit the best bid at 99, got %+v", intents[0])
	}
}

func TestMomentumSilentUntilBufferFull(t *testing.T) {
	m := NewMomentum(Config{Name: "momentum", Symbols: []string{"KELP"}}, testLogger())

	intents := feedMids(t, m, "KELP", []int64{100, 105, 110, 115}, true)
	if len(intents) != 0 {
		t.Fatalf("expected no trades before the buffer fills, got %+v", intents)
	}
}

func TestMomentumRequiresVolumeConfirmation(t *testing.T) {
	m := NewMomentum(Config{Name: "momentum", Symbols: []string{"KELP"}}, testLogger())

	// Rising mids but bid-heavy books: trend without volume confirmation.
	intents := feedMids(t, m, "KELP", []int64{100, 101, 102, 103, 104}, false)
	if len(intents) != 0 {
		t.Fatalf("expected no trade without volume confirmation, got %+v", intents)
	}
}

func TestMomentumSkipsOneSidedBooks(t *testing.T) {
	m := NewMomentum(Config{Name: "momentum", Symbols: []string{"KELP"}}, testLogger())

	book := domain.NewBookDepth()
	book.AddBid(99, 10)
	view := makeView(map[string]*domain.BookDepth{"KELP": book}, nil)

	intents, err := m.OnTick(context.Background(), view)
	if err != nil {
		t.Fatalf("on tick: %v", err)
	}
	if len(intents) != 0 {
		t.Fatalf("one-sided book must yield no intents, got %+v", intents)
	}
}
