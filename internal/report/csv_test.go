package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteFills(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	fills := []domain.Fill{
		{Timestamp: 0, Symbol: "KELP", Price: 101.5, Quantity: 4},
		{Timestamp: 100, Symbol: "KELP", Price: 99, Quantity: -4},
	}
	if err := w.WriteFills("0", fills); err != nil {
		t.Fatalf("write fills: %v", err)
	}

	rows := readCSV(t, w.FillsPath("0"))
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "timestamp" || rows[0][3] != "quantity" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][2] != "101.5" || rows[2][3] != "-4" {
		t.Fatalf("unexpected data rows: %v", rows[1:])
	}
}

func TestWriteEquitySortsPositionColumns(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	snaps := []domain.EquitySnapshot{
		{Timestamp: 0, Realized: 0, Unrealized: -3, Total: -3, Positions: map[string]int64{"KELP": 3}},
		{Timestamp: 100, Realized: 9, Total: 9, Positions: map[string]int64{"KELP": 0, "DJEMBES": -2}},
	}
	if err := w.WriteEquity("0", snaps); err != nil {
		t.Fatalf("write equity: %v", err)
	}

	rows := readCSV(t, w.EquityPath("0"))
	wantHeader := []string{"timestamp", "realized_pnl", "unrealized_pnl", "total_pnl", "DJEMBES", "KELP"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Fatalf("header column %d: expected %s, got %s", i, col, rows[0][i])
		}
	}
	// Rows carry every column even when a snapshot never saw the symbol.
	if rows[1][4] != "0" || rows[1][5] != "3" {
		t.Fatalf("unexpected first data row: %v", rows[1])
	}
	if rows[2][4] != "-2" || rows[2][5] != "0" {
		t.Fatalf("unexpected second data row: %v", rows[2])
	}
}

func TestNewWriterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if _, err := NewWriter(dir); err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("output dir not created: %v", err)
	}
}
