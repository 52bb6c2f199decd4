package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

// scriptedStrategy replays a fixed list of intents per invocation, or fails
// on the ticks listed in failOn.
type scriptedStrategy struct {
	name    string
	intents [][]domain.OrderIntent
	failOn  map[int]error
	calls   int
}

func (s *scriptedStrategy) Name() string                   { return s.name }
func (s *scriptedStrategy) Init(ctx context.Context) error { return nil }
func (s *scriptedStrategy) Close() error                   { return nil }

func (s *scriptedStrategy) OnTick(ctx context.Context, view domain.TickView) ([]domain.OrderIntent, error) {
	call := s.calls
	s.calls++
	if err, ok := s.failOn[call]; ok {
		return nil, err
	}
	if call >= len(s.intents) {
		return nil, nil
	}
	return s.intents[call], nil
}

type captureSink struct {
	snaps []domain.EquitySnapshot
}

func (c *captureSink) OnSnapshot(snap domain.EquitySnapshot) {
	c.snaps = append(c.snaps, snap)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func twoSided(bid, bidQty, ask, askQty int64) *domain.BookDepth {
	d := domain.NewBookDepth()
	d.AddBid(bid, bidQty)
	d.AddAsk(ask, askQty)
	return d
}

func TestRunEmptyTicks(t *testing.T) {
	r := NewReplay("0", nil, nil, testLogger())
	if _, err := r.Run(context.Background(), nil); !errors.Is(err, domain.ErrNoTicks) {
		t.Fatalf("expected ErrNoTicks, got %v", err)
	}
}

func TestRunProducesFillsAndEquity(t *testing.T) {
	strat := &scriptedStrategy{
		name: "scripted",
		intents: [][]domain.OrderIntent{
			{{Symbol: "KELP", Price: 102, Quantity: 3}},
			{{Symbol: "KELP", Price: 104, Quantity: -3}},
		},
	}
	ticks := []domain.Tick{
		{Timestamp: 0, Depths: map[string]*domain.BookDepth{"KELP": twoSided(100, 10, 102, 10)}},
		{Timestamp: 100, Depths: map[string]*domain.BookDepth{"KELP": twoSided(105, 10, 107, 10)}},
	}

	sink := &captureSink{}
	result, err := NewReplay("0", []Strategy{strat}, []SnapshotSink{sink}, testLogger()).Run(context.Background(), ticks)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.Fills) != 2 {
		t.Fatalf("expected 2 fills, got %d: %+v", len(result.Fills), result.Fills)
	}
	if result.Fills[0].Price != 102 || result.Fills[1].Price != 105 {
		t.Fatalf("unexpected fill prices: %+v", result.Fills)
	}

	// Bought 3 at 102, marked at mid 101 on tick one.
	first := result.Equity[0]
	if math.Abs(first.Unrealized-(-3)) > 1e-9 || first.Realized != 0 {
		t.Fatalf("unexpected tick-one equity: %+v", first)
	}
	// Sold 3 at 105 on tick two: realized 9, flat afterwards.
	last := result.Equity[1]
	if math.Abs(last.Realized-9) > 1e-9 || last.Unrealized != 0 {
		t.Fatalf("unexpected tick-two equity: %+v", last)
	}
	if math.Abs(last.Total-(last.Realized+last.Unrealized)) > 1e-9 {
		t.Fatalf("total must equal realized plus unrealized: %+v", last)
	}

	if len(sink.snaps) != 2 {
		t.Fatalf("expected one snapshot per tick, got %d", len(sink.snaps))
	}
	if result.Run.Status != domain.RunStatusDone || result.Run.FillCount != 2 {
		t.Fatalf("unexpected finished run: %+v", result.Run)
	}
}

func TestOneSidedBookKeepsLastMark(t *testing.T) {
	strat := &scriptedStrategy{
		name: "scripted",
		intents: [][]domain.OrderIntent{
			{{Symbol: "KELP", Price: 102, Quantity: 3}},
		},
	}
	bidOnly := domain.NewBookDepth()
	bidOnly.AddBid(100, 10)
	ticks := []domain.Tick{
		{Timestamp: 0, Depths: map[string]*domain.BookDepth{"KELP": twoSided(100, 10, 102, 10)}},
		{Timestamp: 100, Depths: map[string]*domain.BookDepth{"KELP": bidOnly}},
	}

	result, err := NewReplay("0", []Strategy{strat}, nil, testLogger()).Run(context.Background(), ticks)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// Bought 3 at 102 against mid 101 on tick one.
	first := result.Equity[0]
	if math.Abs(first.Unrealized-(-3)) > 1e-9 {
		t.Fatalf("unexpected tick-one equity: %+v", first)
	}
	// Tick two has no ask side, so KELP keeps its last mid of 101. The open
	// position must hold its mark rather than drop to zero unrealized.
	last := result.Equity[1]
	if last.Positions["KELP"] != 3 {
		t.Fatalf("expected the position to stay open, got %+v", last.Positions)
	}
	if math.Abs(last.Unrealized-(-3)) > 1e-9 {
		t.Fatalf("expected unrealized to carry the last mark, got %+v", last)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	newTicks := func() []domain.Tick {
		return []domain.Tick{
			{Timestamp: 0, Depths: map[string]*domain.BookDepth{"KELP": twoSided(100, 8, 102, 8)}},
			{Timestamp: 100, Depths: map[string]*domain.BookDepth{"KELP": twoSided(101, 8, 103, 8)}},
			{Timestamp: 200, Depths: map[string]*domain.BookDepth{"KELP": twoSided(99, 8, 101, 8)}},
		}
	}
	newStrat := func() *scriptedStrategy {
		return &scriptedStrategy{
			name: "scripted",
			intents: [][]domain.OrderIntent{
				{{Symbol: "KELP", Price: 102, Quantity: 5}},
				{{Symbol: "KELP", Price: 101, Quantity: -2}},
				{{Symbol: "KELP", Price: 99, Quantity: -3}},
			},
		}
	}

	a, err := NewReplay("0", []Strategy{newStrat()}, nil, testLogger()).Run(context.Background(), newTicks())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := NewReplay("0", []Strategy{newStrat()}, nil, testLogger()).Run(context.Background(), newTicks())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(a.Fills) != len(b.Fills) {
		t.Fatalf("fill counts differ: %d vs %d", len(a.Fills), len(b.Fills))
	}
	for i := range a.Fills {
		if a.Fills[i] != b.Fills[i] {
			t.Fatalf("fill %d differs: %+v vs %+v", i, a.Fills[i], b.Fills[i])
		}
	}
	if a.Run.Total != b.Run.Total {
		t.Fatalf("final PnL differs: %v vs %v", a.Run.Total, b.Run.Total)
	}
}

func TestRunRecordsDropReasons(t *testing.T) {
	strat := &scriptedStrategy{
		name: "scripted",
		intents: [][]domain.OrderIntent{{
			{Symbol: "KELP", Price: 102, Quantity: 0},
			{Symbol: "GHOST", Price: 102, Quantity: 5},
			{Symbol: "KELP", Price: 95, Quantity: 5},
		}},
	}
	ticks := []domain.Tick{
		{Timestamp: 0, Depths: map[string]*domain.BookDepth{"KELP": twoSided(100, 10, 102, 10)}},
	}

	result, err := NewReplay("0", []Strategy{strat}, nil, testLogger()).Run(context.Background(), ticks)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	dropped := result.Ticks[0].Dropped
	if len(dropped) != 3 {
		t.Fatalf("expected 3 dropped intents, got %d: %+v", len(dropped), dropped)
	}
	want := []domain.DropReason{domain.DropZeroQuantity, domain.DropNoBook, domain.DropNoLiquidity}
	for i, d := range dropped {
		if d.Reason != want[i] {
			t.Fatalf("drop %d: expected reason %q, got %q", i, want[i], d.Reason)
		}
	}
	if len(result.Fills) != 0 {
		t.Fatalf("no intent should have filled, got %+v", result.Fills)
	}
}

func TestRunContinuesPastStrategyErrors(t *testing.T) {
	failing := &scriptedStrategy{
		name:   "flaky",
		failOn: map[int]error{0: errors.New("window not ready")},
		intents: [][]domain.OrderIntent{
			nil,
			{{Symbol: "KELP", Price: 103, Quantity: 2}},
		},
	}
	ticks := []domain.Tick{
		{Timestamp: 0, Depths: map[string]*domain.BookDepth{"KELP": twoSided(100, 10, 102, 10)}},
		{Timestamp: 100, Depths: map[string]*domain.BookDepth{"KELP": twoSided(101, 10, 103, 10)}},
	}

	result, err := NewReplay("0", []Strategy{failing}, nil, testLogger()).Run(context.Background(), ticks)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.Ticks[0].Errors) != 1 || result.Ticks[0].Errors[0].Strategy != "flaky" {
		t.Fatalf("expected the tick-one error recorded, got %+v", result.Ticks[0].Errors)
	}
	if len(result.Fills) != 1 || result.Fills[0].Timestamp != 100 {
		t.Fatalf("expected the run to continue and fill on tick two, got %+v", result.Fills)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ticks := []domain.Tick{
		{Timestamp: 0, Depths: map[string]*domain.BookDepth{"KELP": twoSided(100, 10, 102, 10)}},
	}
	_, err := NewReplay("0", nil, nil, testLogger()).Run(ctx, ticks)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPositionsSnapshotIsIsolated(t *testing.T) {
	strat := &scriptedStrategy{
		name: "scripted",
		intents: [][]domain.OrderIntent{
			{{Symbol: "KELP", Price: 102, Quantity: 3}},
		},
	}
	ticks := []domain.Tick{
		{Timestamp: 0, Depths: map[string]*domain.BookDepth{"KELP": twoSided(100, 10, 102, 10)}},
	}

	result, err := NewReplay("0", []Strategy{strat}, nil, testLogger()).Run(context.Background(), ticks)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// Mutating the reported snapshot must not touch later state.
	result.Equity[0].Positions["KELP"] = 999
	if got := result.Run.FillCount; got != 1 {
		t.Fatalf("expected 1 fill, got %d", got)
	}
}
