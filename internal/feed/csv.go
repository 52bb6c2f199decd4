// Package feed ingests historical price CSVs and turns them into the
// chronological tick sequence the replay engine consumes.
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

// maxLevels is how many price levels per side the input data carries.
const maxLevels = 3

// ReadFile parses a semicolon-separated price file into ticks ordered by
// ascending timestamp.
func ReadFile(path string) ([]domain.Tick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("feed: open %s: %w", path, err)
	}
	defer f.Close()

	ticks, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("feed: %s: %w", path, err)
	}
	return ticks, nil
}

// Read parses price rows from r. The expected format is one row per
// instrument per timestamp with semicolon-separated columns: timestamp,
// product, and up to three (price, volume) pairs per side. Absent levels are
// empty cells and are omitted from the book, never zero-filled. A malformed
// row aborts ingestion; the replay is deterministic, so a partial tick
// sequence would silently change every downstream number.
func Read(r io.Reader) ([]domain.Tick, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"timestamp", "product"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("read header: missing column %q: %w", required, domain.ErrBadRow)
		}
	}

	depths := make(map[int64]map[string]*domain.BookDepth)
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		ts, err := intField(record, cols, "timestamp")
		if err != nil {
			return nil, fmt.Errorf("line %d: timestamp: %w", line, err)
		}
		product := field(record, cols, "product")
		if product == "" {
			return nil, fmt.Errorf("line %d: empty product: %w", line, domain.ErrBadRow)
		}

		depth, err := parseDepth(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, product, err)
		}

		if depths[ts] == nil {
			depths[ts] = make(map[string]*domain.BookDepth)
		}
		depths[ts][product] = depth
	}

	if len(depths) == 0 {
		return nil, domain.ErrNoTicks
	}

	timestamps := make([]int64, 0, len(depths))
	for ts := range depths {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	ticks := make([]domain.Tick, 0, len(timestamps))
	for _, ts := range timestamps {
		ticks = append(ticks, domain.Tick{Timestamp: ts, Depths: depths[ts]})
	}
	return ticks, nil
}

// parseDepth builds one instrument's book from a row's level columns. The
// source stores volumes as positive magnitudes on both sides.
func parseDepth(record []string, cols map[string]int) (*domain.BookDepth, error) {
	depth := domain.NewBookDepth()
	for i := 1; i <= maxLevels; i++ {
		bidPrice, bidOK, err := optionalInt(record, cols, fmt.Sprintf("bid_price_%d", i))
		if err != nil {
			return nil, err
		}
		bidVol, bidVolOK, err := optionalInt(record, cols, fmt.Sprintf("bid_volume_%d", i))
		if err != nil {
			return nil, err
		}
		if bidOK && bidVolOK {
			depth.AddBid(bidPrice, bidVol)
		}

		askPrice, askOK, err := optionalInt(record, cols, fmt.Sprintf("ask_price_%d", i))
		if err != nil {
			return nil, err
		}
		askVol, askVolOK, err := optionalInt(record, cols, fmt.Sprintf("ask_volume_%d", i))
		if err != nil {
			return nil, err
		}
		if askOK && askVolOK {
			depth.AddAsk(askPrice, askVol)
		}
	}
	return depth, nil
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func intField(record []string, cols map[string]int, name string) (int64, error) {
	raw := field(record, cols, name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s: %w", name, domain.ErrBadRow)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", name, raw, domain.ErrBadRow)
	}
	return v, nil
}

// optionalInt parses a level column that may be absent or empty. Some files
// carry level prices as floats with a trailing ".0"; those are accepted.
func optionalInt(record []string, cols map[string]int, name string) (int64, bool, error) {
	raw := field(record, cols, name)
	if raw == "" {
		return 0, false, nil
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, true, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s %q: %w", name, raw, domain.ErrBadRow)
	}
	return int64(f), true, nil
}
