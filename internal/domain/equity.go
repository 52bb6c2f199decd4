package domain

// EquitySnapshot is the per-tick account state: accumulated realized PnL,
// mark-to-market unrealized PnL, their sum, and the net position per
// instrument. One snapshot is appended per replay tick, in timestamp order.
type EquitySnapshot struct {
	Timestamp  int64
	Realized   float64
	Unrealized float64
	Total      float64
	Positions  map[string]int64
}

// TickError records a strategy that failed on a tick. The tick itself still
// completes; the failure becomes part of the run's record.
type TickError struct {
	Strategy string
	Err      string
}

// TickResult is the explicit outcome of one replay tick: the fills actually
// executed, the intents that produced no trade (with reasons), any strategy
// failures, and the resulting equity snapshot.
type TickResult struct {
	Timestamp int64
	Fills     []Fill
	Dropped   []DroppedIntent
	Errors    []TickError
	Equity    EquitySnapshot
}

// TickView is what a strategy sees each tick: the per-instrument books and a
// read-only snapshot of its own positions. Strategies must not retain the
// maps across ticks.
type TickView struct {
	Timestamp int64
	Depths    map[string]*BookDepth
	Positions map[string]int64
}

// Position returns the signed net position for an instrument, zero if flat.
func (v TickView) Position(symbol string) int64 {
	return v.Positions[symbol]
}
