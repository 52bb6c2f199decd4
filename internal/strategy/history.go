package strategy

import "math"

// History is a bounded per-symbol mid-price buffer used by the momentum and
// mean-reversion strategies. Each strategy instance owns its own History;
// nothing is shared across strategies or runs.
type History struct {
	size   int
	prices map[string][]float64
}

// NewHistory creates a History keeping the last size observations per symbol.
func NewHistory(size int) *History {
	return &History{
		size:   size,
		prices: make(map[string][]float64),
	}
}

// Push appends an observation, evicting the oldest when the buffer is full.
func (h *History) Push(symbol string, price float64) {
	buf := append(h.prices[symbol], price)
	if len(buf) > h.size {
		buf = buf[1:]
	}
	h.prices[symbol] = buf
}

// Len returns how many observations are buffered for a symbol.
func (h *History) Len(symbol string) int {
	return len(h.prices[symbol])
}

// Full reports whether the buffer has reached its configured size.
func (h *History) Full(symbol string) bool {
	return len(h.prices[symbol]) >= h.size
}

// Momentum returns last − first over the full buffer, or 0 until full.
func (h *History) Momentum(symbol string) float64 {
	buf := h.prices[symbol]
	if len(buf) < h.size {
		return 0
	}
	return buf[len(buf)-1] - buf[0]
}

// Mean returns the arithmetic mean of the buffered prices, 0 when empty.
func (h *History) Mean(symbol string) float64 {
	buf := h.prices[symbol]
	if len(buf) == 0 {
		return 0
	}
	var sum float64
	for _, p := range buf {
		sum += p
	}
	return sum / float64(len(buf))
}

// Std returns the population standard deviation, 0 with fewer than two
// observations.
func (h *History) Std(symbol string) float64 {
	buf := h.prices[symbol]
	if len(buf) < 2 {
		return 0
	}
	mean := h.Mean(symbol)
	var sq float64
	for _, p := range buf {
		d := p - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(buf)))
}

// ZScore returns (price − mean) / std over the buffer, 0 until full or when
// the buffer has no variance.
func (h *History) ZScore(symbol string, price float64) float64 {
	if !h.Full(symbol) {
		return 0
	}
	std := h.Std(symbol)
	if std == 0 {
		return 0
	}
	return (price - h.Mean(symbol)) / std
}
