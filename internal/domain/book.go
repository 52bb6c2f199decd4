package domain

import "sort"

// BookDepth is a single-instrument order book snapshot: resting bid levels
// (price → quantity available to sell into) and ask levels (price → quantity
// available to buy from). Quantities are stored as positive magnitudes on
// both sides; a level with zero or negative quantity is never stored. An
// empty side means no liquidity there this tick.
//
// A BookDepth is rebuilt fresh from input data every replay tick and is never
// mutated by matching.
type BookDepth struct {
	bids map[int64]int64
	asks map[int64]int64
}

// NewBookDepth returns an empty two-sided book.
func NewBookDepth() *BookDepth {
	return &BookDepth{
		bids: make(map[int64]int64),
		asks: make(map[int64]int64),
	}
}

// AddBid records a resting buy level. Non-positive quantities are ignored.
func (d *BookDepth) AddBid(price, qty int64) {
	if qty <= 0 {
		return
	}
	d.bids[price] += qty
}

// AddAsk records a resting sell level. Non-positive quantities are ignored.
func (d *BookDepth) AddAsk(price, qty int64) {
	if qty <= 0 {
		return
	}
	d.asks[price] += qty
}

// HasBids reports whether any buy liquidity is present.
func (d *BookDepth) HasBids() bool { return len(d.bids) > 0 }

// HasAsks reports whether any sell liquidity is present.
func (d *BookDepth) HasAsks() bool { return len(d.asks) > 0 }

// BestBid returns the highest bid price. ok is false when the side is empty.
func (d *BookDepth) BestBid() (price int64, ok bool) {
	first := true
	for p := range d.bids {
		if first || p > price {
			price = p
			first = false
		}
	}
	return price, !first
}

// BestAsk returns the lowest ask price. ok is false when the side is empty.
func (d *BookDepth) BestAsk() (price int64, ok bool) {
	first := true
	for p := range d.asks {
		if first || p < price {
			price = p
			first = false
		}
	}
	return price, !first
}

// BidQty returns the quantity resting at the given bid price, zero if none.
func (d *BookDepth) BidQty(price int64) int64 { return d.bids[price] }

// AskQty returns the quantity resting at the given ask price, zero if none.
func (d *BookDepth) AskQty(price int64) int64 { return d.asks[price] }

// BidPrices returns all bid prices in descending order (best first).
func (d *BookDepth) BidPrices() []int64 {
	prices := make([]int64, 0, len(d.bids))
	for p := range d.bids {
		prices = append(prices, p)
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i] > prices[j] })
	return prices
}

// AskPrices returns all ask prices in ascending order (best first).
func (d *BookDepth) AskPrices() []int64 {
	prices := make([]int64, 0, len(d.asks))
	for p := range d.asks {
		prices = append(prices, p)
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })
	return prices
}

// BidVolume returns the total quantity across all bid levels.
func (d *BookDepth) BidVolume() int64 {
	var total int64
	for _, q := range d.bids {
		total += q
	}
	return total
}

// AskVolume returns the total quantity across all ask levels.
func (d *BookDepth) AskVolume() int64 {
	var total int64
	for _, q := range d.asks {
		total += q
	}
	return total
}

// Mid returns the midpoint of the best bid and best ask. ok is false when
// either side is empty; a one-sided book has no mark price.
func (d *BookDepth) Mid() (mid float64, ok bool) {
	bid, okBid := d.BestBid()
	ask, okAsk := d.BestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return float64(bid+ask) / 2, true
}

// Tick is one replay step: every instrument's book at a single input
// timestamp. Depths holds only the instruments present in that tick's data.
type Tick struct {
	Timestamp int64
	Depths    map[string]*BookDepth
}
