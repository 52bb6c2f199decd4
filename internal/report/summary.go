package report

import (
	"fmt"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

// Summary condenses a finished run into the handful of numbers worth
// logging and sending to notifiers.
type Summary struct {
	Day         string
	RunID       string
	Ticks       int
	Fills       int
	Dropped     int
	Realized    float64
	Unrealized  float64
	Total       float64
	MaxDrawdown float64
}

// Summarize computes a Summary from a run result. Max drawdown is the
// largest peak-to-trough decline of total PnL across the equity curve.
func Summarize(result *domain.RunResult) Summary {
	s := Summary{
		Day:   result.Run.Day,
		RunID: result.Run.ID,
		Ticks: len(result.Ticks),
		Fills: len(result.Fills),
	}
	for _, tr := range result.Ticks {
		s.Dropped += len(tr.Dropped)
	}

	peak := 0.0
	for i, snap := range result.Equity {
		if i == 0 || snap.Total > peak {
			peak = snap.Total
		}
		if dd := peak - snap.Total; dd > s.MaxDrawdown {
			s.MaxDrawdown = dd
		}
	}

	if n := len(result.Equity); n > 0 {
		last := result.Equity[n-1]
		s.Realized = last.Realized
		s.Unrealized = last.Unrealized
		s.Total = last.Total
	}
	return s
}

// String renders the summary as a single human-readable line.
func (s Summary) String() string {
	return fmt.Sprintf(
		"day %s: total %.2f (realized %.2f, unrealized %.2f), %d fills over %d ticks, %d dropped intents, max drawdown %.2f",
		s.Day, s.Total, s.Realized, s.Unrealized, s.Fills, s.Ticks, s.Dropped, s.MaxDrawdown,
	)
}
