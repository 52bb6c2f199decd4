package engine

import (
	"math"
	"testing"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

func testBook() *domain.BookDepth {
	d := domain.NewBookDepth()
	d.AddBid(99, 10)
	d.AddBid(98, 5)
	d.AddAsk(101, 4)
	d.AddAsk(103, 6)
	return d
}

func TestMarketBuyCappedAtBestLevel(t *testing.T) {
	fill := Match(domain.OrderIntent{Symbol: "KELP", Price: domain.MarketPrice, Quantity: 10}, testBook())

	if fill.Quantity != 4 {
		t.Fatalf("expected market buy to stop at the best ask's 4 lots, got %d", fill.Quantity)
	}
	if fill.Price != 101 {
		t.Fatalf("expected fill price 101, got %v", fill.Price)
	}
}

func TestLimitBuySweepsQualifyingLevels(t *testing.T) {
	fill := Match(domain.OrderIntent{Symbol: "KELP", Price: 103, Quantity: 10}, testBook())

	if fill.Quantity != 10 {
		t.Fatalf("expected full fill of 10, got %d", fill.Quantity)
	}
	want := (4.0*101 + 6.0*103) / 10.0
	if math.Abs(fill.Price-want) > 1e-9 {
		t.Fatalf("expected VWAP %v, got %v", want, fill.Price)
	}
}

func TestLimitBuyExcludesLevelsAboveLimit(t *testing.T) {
	fill := Match(domain.OrderIntent{Symbol: "KELP", Price: 102, Quantity: 10}, testBook())

	if fill.Quantity != 4 || fill.Price != 101 {
		t.Fatalf("expected 4 lots at 101 only, got %d at %v", fill.Quantity, fill.Price)
	}
}

func TestLimitBuyNoQualifyingLiquidity(t *testing.T) {
	fill := Match(domain.OrderIntent{Symbol: "KELP", Price: 100, Quantity: 10}, testBook())

	if fill.Quantity != 0 {
		t.Fatalf("expected zero fill below the best ask, got %d", fill.Quantity)
	}
}

func TestMarketSellCappedAtBestBid(t *testing.T) {
	fill := Match(domain.OrderIntent{Symbol: "KELP", Price: domain.MarketPrice, Quantity: -12}, testBook())

	if fill.Quantity != -10 {
		t.Fatalf("expected market sell capped at the best bid's 10 lots, got %d", fill.Quantity)
	}
	if fill.Price != 99 {
		t.Fatalf("expected fill price 99, got %v", fill.Price)
	}
}

func TestLimitSellSweepsDownToLimit(t *testing.T) {
	fill := Match(domain.OrderIntent{Symbol: "KELP", Price: 98, Quantity: -12}, testBook())

	if fill.Quantity != -12 {
		t.Fatalf("expected full fill of -12, got %d", fill.Quantity)
	}
	want := (10.0*99 + 2.0*98) / 12.0
	if math.Abs(fill.Price-want) > 1e-9 {
		t.Fatalf("expected VWAP %v, got %v", want, fill.Price)
	}
}

func TestSellBelowAllBidsFillsEverything(t *testing.T) {
	fill := Match(domain.OrderIntent{Symbol: "KELP", Price: 90, Quantity: -20}, testBook())

	if fill.Quantity != -15 {
		t.Fatalf("expected the whole bid side of 15 lots, got %d", fill.Quantity)
	}
}

func TestMatchEmptySideAndNilBook(t *testing.T) {
	oneSided := domain.NewBookDepth()
	oneSided.AddBid(99, 10)

	if fill := Match(domain.OrderIntent{Symbol: "KELP", Price: domain.MarketPrice, Quantity: 5}, oneSided); fill.Quantity != 0 {
		t.Fatalf("market buy into an askless book should not fill, got %d", fill.Quantity)
	}
	if fill := Match(domain.OrderIntent{Symbol: "KELP", Price: 100, Quantity: 5}, nil); fill.Quantity != 0 {
		t.Fatalf("nil book should not fill, got %d", fill.Quantity)
	}
	if fill := Match(domain.OrderIntent{Symbol: "KELP", Price: 100, Quantity: 0}, testBook()); fill.Quantity != 0 {
		t.Fatalf("zero quantity intent should not fill, got %d", fill.Quantity)
	}
}

func TestMatchNeverMutatesBook(t *testing.T) {
	book := testBook()
	_ = Match(domain.OrderIntent{Symbol: "KELP", Price: 103, Quantity: 10}, book)

	if book.AskQty(101) != 4 || book.AskQty(103) != 6 {
		t.Fatalf("ask levels changed after match: %d@101 %d@103", book.AskQty(101), book.AskQty(103))
	}
	if book.BidQty(99) != 10 || book.BidQty(98) != 5 {
		t.Fatalf("bid levels changed after match: %d@99 %d@98", book.BidQty(99), book.BidQty(98))
	}
}
