// Package report writes replay results to CSV files and computes run
// summary statistics for logging and notifications.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

// Writer emits a run's fill log and equity curve as CSV files under a base
// output directory, one pair of files per day.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create output dir %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// FillsPath returns the fill log path for a day.
func (w *Writer) FillsPath(day string) string {
	return filepath.Join(w.dir, fmt.Sprintf("fills_day_%s.csv", day))
}

// EquityPath returns the equity curve path for a day.
func (w *Writer) EquityPath(day string) string {
	return filepath.Join(w.dir, fmt.Sprintf("equity_day_%s.csv", day))
}

// WriteFills writes the append-only fill log: timestamp, product, price,
// quantity.
func (w *Writer) WriteFills(day string, fills []domain.Fill) error {
	path := w.FillsPath(day)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"timestamp", "product", "price", "quantity"}); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	for _, fill := range fills {
		record := []string{
			strconv.FormatInt(fill.Timestamp, 10),
			fill.Symbol,
			strconv.FormatFloat(fill.Price, 'f', -1, 64),
			strconv.FormatInt(fill.Quantity, 10),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("report: write %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: flush %s: %w", path, err)
	}
	return nil
}

// WriteEquity writes the equity curve with one position column per
// instrument that ever held a position, columns sorted by name so the output
// is byte-stable across runs.
func (w *Writer) WriteEquity(day string, snaps []domain.EquitySnapshot) error {
	path := w.EquityPath(day)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	defer f.Close()

	symbols := positionColumns(snaps)
	header := append([]string{"timestamp", "realized_pnl", "unrealized_pnl", "total_pnl"}, symbols...)

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	for _, snap := range snaps {
		record := []string{
			strconv.FormatInt(snap.Timestamp, 10),
			strconv.FormatFloat(snap.Realized, 'f', -1, 64),
			strconv.FormatFloat(snap.Unrealized, 'f', -1, 64),
			strconv.FormatFloat(snap.Total, 'f', -1, 64),
		}
		for _, sym := range symbols {
			record = append(record, strconv.FormatInt(snap.Positions[sym], 10))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("report: write %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: flush %s: %w", path, err)
	}
	return nil
}

// positionColumns collects every instrument appearing in any snapshot.
func positionColumns(snaps []domain.EquitySnapshot) []string {
	seen := make(map[string]bool)
	for _, snap := range snaps {
		for sym := range snap.Positions {
			seen[sym] = true
		}
	}
	symbols := make([]string, 0, len(seen))
	for sym := range seen {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}
