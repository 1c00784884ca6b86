package eod

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeJournal(t *testing.T, dir, day string, lines []string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	var data []byte
	for _, l := range lines {
		data = append(data, l...)
		data = append(data, '\n')
	}
	if err := os.WriteFile(filepath.Join(dir, day+".txt"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("summary file missing: %v", err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("summary is not valid CSV: %v", err)
	}
	return recs
}

func TestSummarizeDay(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	// Key spellings vary across lines; the normalizer has to reconcile
	// them before replay.
	writeJournal(t, dir, "2026-08-28", []string{
		`{"time":"2026-08-28 09:00:00","symbol":"BTCUSDT","action":"BUY","quantity":1,"price":100,"total":100}`,
		`{"time":"2026-08-28 10:00:00","Symbol":"btcusdt","side":"sell","qty":1,"Price (USD)":150,"Total (USD)":150}`,
		`{"time":"2026-08-28 11:00:00","symbol":"ETHUSDT","action":"SELL","quantity":2,"price":3000,"total":6000}`,
		`not a json line`,
	})

	outPath, err := SummarizeDay(day)
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if outPath == "" {
		t.Fatal("expected a summary path")
	}

	recs := readCSV(t, outPath)
	// header + BTCUSDT + ETHUSDT + TOTAL
	if len(recs) != 4 {
		t.Fatalf("expected 4 records, got %d: %v", len(recs), recs)
	}

	btc := recs[1]
	if btc[0] != "BTCUSDT" {
		t.Fatalf("expected BTCUSDT first, got %s", btc[0])
	}
	// Bought 1 @ 100, sold 1 @ 150.
	if btc[2] != "100.0000" {
		t.Errorf("expected buy avg 100.0000, got %s", btc[2])
	}
	if btc[4] != "150.0000" {
		t.Errorf("expected sell avg 150.0000, got %s", btc[4])
	}
	if btc[5] != "0.00000000" {
		t.Errorf("expected flat net qty, got %s", btc[5])
	}
	if btc[6] != "50.00" {
		t.Errorf("expected realized 50.00, got %s", btc[6])
	}

	eth := recs[2]
	if eth[0] != "ETHUSDT" {
		t.Fatalf("expected ETHUSDT second, got %s", eth[0])
	}
	// Naked sell opens a short with no realized PnL.
	if eth[5] != "-2.00000000" {
		t.Errorf("expected net qty -2, got %s", eth[5])
	}
	if eth[6] != "0.00" {
		t.Errorf("expected no realized PnL on an open short, got %s", eth[6])
	}

	total := recs[3]
	if total[0] != "TOTAL" {
		t.Fatalf("expected TOTAL row, got %s", total[0])
	}
	if total[6] != "50.00" {
		t.Errorf("expected total realized 50.00, got %s", total[6])
	}
	if total[7] != "100.00" || total[8] != "6150.00" {
		t.Errorf("unexpected gross totals: %v", total)
	}
}

func TestSummarizeDay_NoJournal(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	outPath, err := SummarizeDay(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outPath != "" {
		t.Errorf("expected empty path for a day with no journal, got %s", outPath)
	}
}

func TestShouldRunNow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	if run, _ := ShouldRunNow(); run {
		t.Error("no journal yet, must not run")
	}

	writeJournal(t, dir, yesterday, []string{
		`{"symbol":"BTCUSDT","action":"BUY","quantity":1,"price":100,"total":100}`,
	})
	run, outPath := ShouldRunNow()
	if !run {
		t.Error("journal present and summary missing, must run")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(outPath, []byte("done"), 0o644); err != nil {
		t.Fatal(err)
	}
	if run, _ := ShouldRunNow(); run {
		t.Error("summary already written, must not run again")
	}
}
