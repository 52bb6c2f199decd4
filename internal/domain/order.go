package domain

// MarketPrice is the sentinel limit price denoting a market order. A market
// order pegs to the best opposing level at match time.
const MarketPrice int64 = 0

// OrderIntent is a strategy's request to trade. Quantity is signed: positive
// buys, negative sells. Price is an integer limit price, or MarketPrice.
type OrderIntent struct {
	Symbol   string
	Price    int64
	Quantity int64
}

// IsMarket reports whether the intent should peg to the best opposing level.
func (o OrderIntent) IsMarket() bool {
	return o.Price == MarketPrice
}

// Side returns "buy" or "sell" based on the quantity sign, or "" for a
// zero-quantity intent.
func (o OrderIntent) Side() string {
	switch {
	case o.Quantity > 0:
		return "buy"
	case o.Quantity < 0:
		return "sell"
	default:
		return ""
	}
}

// Fill is the executed result of one OrderIntent: the signed traded quantity
// and its volume-weighted average price across all consumed levels. A fill
// with Quantity == 0 means nothing traded and must not be recorded.
type Fill struct {
	Timestamp int64
	Symbol    string
	Price     float64
	Quantity  int64
}

// DropReason classifies why the engine discarded an intent without a trade.
type DropReason string

const (
	DropZeroQuantity DropReason = "zero_quantity"
	DropNoBook       DropReason = "no_book"
	DropNoLiquidity  DropReason = "no_liquidity"
)

// DroppedIntent records an intent that produced no fill, with the reason.
// The replay engine keeps these per tick so a backtest can be audited
// instead of silently swallowing dead orders.
type DroppedIntent struct {
	Intent OrderIntent
	Reason DropReason
}
