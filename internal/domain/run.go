package domain

import "time"

// RunStatus tracks the lifecycle of one replay run.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusDone    RunStatus = "done"
	RunStatusFailed  RunStatus = "failed"
)

// Run identifies one replay of one day's data against one strategy set.
// Independent runs share no mutable state.
type Run struct {
	ID         string
	Day        string
	Strategies []string
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt *time.Time

	TickCount int
	FillCount int
	Realized  float64
	Total     float64
}

// RunResult is the complete output of a finished run: the append-only fill
// log and equity curve, plus summary counters.
type RunResult struct {
	Run    Run
	Fills  []Fill
	Equity []EquitySnapshot
	Ticks  []TickResult
}
