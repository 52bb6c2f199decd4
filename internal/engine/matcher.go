// Package engine implements the replay core: depth-limited order matching,
// position and cost-basis accounting, and the chronological tick loop that
// drives strategies against historical books.
package engine

import "github.com/OtsoKarali/prosperity-replay/internal/domain"

// Match executes one order intent against a single-instrument book and
// returns the resulting fill. The book is never mutated.
//
// A buy consumes ask levels in ascending price order, a sell consumes bid
// levels in descending price order, in both cases only levels at-or-better
// than the order's limit price. A market order pegs its reference price to
// the best opposing level; the at-or-better filter then admits only that one
// level, so a market order never sweeps deeper liquidity even when its
// requested size exceeds what rests there. See the matching notes in
// DESIGN.md before changing this.
//
// The returned fill's price is the volume-weighted average across consumed
// levels. Filled quantity is capped by the book; a zero-quantity fill means
// no trade and its price is meaningless. A zero-quantity intent or a nil
// book yields a zero fill, not an error.
func Match(intent domain.OrderIntent, depth *domain.BookDepth) domain.Fill {
	fill := domain.Fill{Symbol: intent.Symbol}
	if intent.Quantity == 0 || depth == nil {
		return fill
	}

	if intent.Quantity > 0 {
		fill.Quantity, fill.Price = matchBuy(intent, depth)
	} else {
		fill.Quantity, fill.Price = matchSell(intent, depth)
	}
	return fill
}

func matchBuy(intent domain.OrderIntent, depth *domain.BookDepth) (int64, float64) {
	limit := intent.Price
	if intent.IsMarket() {
		best, ok := depth.BestAsk()
		if !ok {
			return 0, 0
		}
		limit = best
	}

	remaining := intent.Quantity
	var executed, spent int64
	for _, price := range depth.AskPrices() {
		if price > limit {
			break
		}
		qty := min64(remaining, depth.AskQty(price))
		executed += qty
		spent += qty * price
		remaining -= qty
		if remaining <= 0 {
			break
		}
	}
	if executed == 0 {
		return 0, 0
	}
	return executed, float64(spent) / float64(executed)
}

func matchSell(intent domain.OrderIntent, depth *domain.BookDepth) (int64, float64) {
	limit := intent.Price
	if intent.IsMarket() {
		best, ok := depth.BestBid()
		if !ok {
			return 0, 0
		}
		limit = best
	}

	remaining := -intent.Quantity
	var executed, received int64
	for _, price := range depth.BidPrices() {
		if price < limit {
			break
		}
		qty := min64(remaining, depth.BidQty(price))
		executed += qty
		received += qty * price
		remaining -= qty
		if remaining <= 0 {
			break
		}
	}
	if executed == 0 {
		return 0, 0
	}
	return -executed, float64(received) / float64(executed)
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
