package engine

import (
	"fmt"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

// Ledger tracks the signed net position, cost basis, and realized PnL per
// instrument across one replay run. It is exclusively owned by the replay
// loop; nothing here is safe for concurrent use.
//
// Cost basis is stored as a signed total (average entry price × position)
// rather than a pure average, so fully closing a position never divides.
// Invariant: a zero position always carries a zero basis.
type Ledger struct {
	position map[string]int64
	basis    map[string]float64
	realized map[string]float64
}

// NewLedger returns an empty ledger with all positions at zero.
func NewLedger() *Ledger {
	return &Ledger{
		position: make(map[string]int64),
		basis:    make(map[string]float64),
		realized: make(map[string]float64),
	}
}

// Apply rolls one fill into position, cost basis, and realized PnL state.
// Realized PnL changes only when the fill reduces or flips an existing
// position; opening and adding only move the basis. A zero-quantity fill is
// a no-op. The returned error wraps domain.ErrInvariant and indicates a bug
// in the ledger itself, not a recoverable input condition.
func (l *Ledger) Apply(fill domain.Fill) error {
	if fill.Quantity == 0 {
		return nil
	}

	sym := fill.Symbol
	old := l.position[sym]
	qty := fill.Quantity
	price := fill.Price
	next := old + qty

	switch {
	case old == 0:
		// Fresh position.
		l.basis[sym] = float64(qty) * price

	case sameSign(old, qty):
		// Adding to the existing direction: basis grows by the new cost,
		// which updates the implied average entry proportionally.
		l.basis[sym] += float64(qty) * price

	default:
		// The fill opposes the position: realize PnL on the closed part.
		closing := min64(abs64(old), abs64(qty))
		avgEntry := l.basis[sym] / float64(old)
		l.realized[sym] += float64(closing) * (price - avgEntry) * float64(sign64(old))

		if abs64(qty) > abs64(old) {
			// Flip: the excess opens a new opposite position at the fill price.
			l.basis[sym] = float64(next) * price
		} else if next != 0 {
			// Partial reduction: scale the basis to the remaining magnitude.
			l.basis[sym] *= float64(next) / float64(old)
		} else {
			l.basis[sym] = 0
		}
	}

	l.position[sym] = next

	if next == 0 && l.basis[sym] != 0 {
		return fmt.Errorf("engine: %s flat with basis %.4f: %w", sym, l.basis[sym], domain.ErrInvariant)
	}
	return nil
}

// Position returns the signed net position for an instrument.
func (l *Ledger) Position(symbol string) int64 {
	return l.position[symbol]
}

// Positions returns a copy of all non-zero-or-touched positions, suitable to
// hand to strategies as a read-only snapshot.
func (l *Ledger) Positions() map[string]int64 {
	out := make(map[string]int64, len(l.position))
	for sym, pos := range l.position {
		out[sym] = pos
	}
	return out
}

// AvgEntry returns the average entry price backing the current position.
// ok is false for a flat position, which has no entry price.
func (l *Ledger) AvgEntry(symbol string) (avg float64, ok bool) {
	pos := l.position[symbol]
	if pos == 0 {
		return 0, false
	}
	return l.basis[symbol] / float64(pos), true
}

// Mark returns the mark-to-market unrealized PnL of an instrument at the
// given price. Under the signed convention (last − avgEntry) × position
// covers longs and shorts alike. A flat position marks to zero.
func (l *Ledger) Mark(symbol string, last float64) float64 {
	avg, ok := l.AvgEntry(symbol)
	if !ok {
		return 0
	}
	return (last - avg) * float64(l.position[symbol])
}

// MarkAll recomputes total unrealized PnL from scratch against the given
// per-instrument mark prices. Instruments without a mark this tick (one-sided
// or absent book) are skipped, not zeroed.
func (l *Ledger) MarkAll(lastPrices map[string]float64) float64 {
	var total float64
	for sym, pos := range l.position {
		if pos == 0 {
			continue
		}
		last, ok := lastPrices[sym]
		if !ok {
			continue
		}
		total += l.Mark(sym, last)
	}
	return total
}

// Realized returns the accumulated realized PnL for one instrument.
func (l *Ledger) Realized(symbol string) float64 {
	return l.realized[symbol]
}

// RealizedTotal returns the accumulated realized PnL across all instruments.
func (l *Ledger) RealizedTotal() float64 {
	var total float64
	for _, pnl := range l.realized {
		total += pnl
	}
	return total
}

func sameSign(a, b int64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func sign64(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
