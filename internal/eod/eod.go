// Package eod rebuilds daily trading summaries from the trade journal.
// Journal lines are decoded as loose maps and pushed through the
// normalizer before replay, so rows written by older journal formats
// with drifting key spellings still aggregate cleanly.
package eod

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"crypto-paper-trader/internal/ledger"
	"crypto-paper-trader/internal/normalize"
	"crypto-paper-trader/internal/types"
)

type aggRow struct {
	Symbol    string
	BuyQty    float64
	BuyValue  float64
	SellQty   float64
	SellValue float64
	Position  types.Position
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dayTradeFile(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

func dayCSVPath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), "eod", d+".csv")
}

// SummarizeDay aggregates the day's journal into a per-symbol CSV with
// short-aware realized PnL. Returns "" when the day has no journal.
func SummarizeDay(t time.Time) (string, error) {
	inPath := dayTradeFile(t)
	if _, err := os.Stat(inPath); err != nil {
		return "", nil
	}
	f, err := os.Open(inPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var rows []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var row map[string]any
		if err := json.Unmarshal(sc.Bytes(), &row); err != nil {
			continue
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return "", err
	}

	aggs := map[string]*aggRow{}
	for _, tr := range normalize.Trades(rows) {
		if tr.Symbol == "" {
			continue
		}
		row := aggs[tr.Symbol]
		if row == nil {
			row = &aggRow{Symbol: tr.Symbol, Position: types.Position{Symbol: tr.Symbol}}
			aggs[tr.Symbol] = row
		}
		switch tr.Action {
		case types.ActionBuy:
			row.BuyQty += tr.Quantity
			row.BuyValue += tr.Total
		case types.ActionSell:
			row.SellQty += tr.Quantity
			row.SellValue += tr.Total
		}
		row.Position = ledger.Apply(row.Position, tr)
	}
	if len(aggs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := dayCSVPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()
	w := csv.NewWriter(out)
	defer w.Flush()

	headers := []string{"symbol", "buy_qty", "buy_avg", "sell_qty", "sell_avg", "net_qty", "realized_pnl", "gross_buy_value", "gross_sell_value"}
	if err := w.Write(headers); err != nil {
		return "", err
	}

	var totalBuy, totalSell, totalPnL float64
	for _, k := range keys {
		r := aggs[k]
		var buyAvg, sellAvg float64
		if r.BuyQty > 0 {
			buyAvg = r.BuyValue / r.BuyQty
		}
		if r.SellQty > 0 {
			sellAvg = r.SellValue / r.SellQty
		}
		rec := []string{
			r.Symbol,
			fmt.Sprintf("%.8f", r.BuyQty),
			fmt.Sprintf("%.4f", buyAvg),
			fmt.Sprintf("%.8f", r.SellQty),
			fmt.Sprintf("%.4f", sellAvg),
			fmt.Sprintf("%.8f", r.Position.Quantity),
			fmt.Sprintf("%.2f", r.Position.RealizedPnL),
			fmt.Sprintf("%.2f", r.BuyValue),
			fmt.Sprintf("%.2f", r.SellValue),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		totalBuy += r.BuyValue
		totalSell += r.SellValue
		totalPnL += r.Position.RealizedPnL
	}
	_ = w.Write([]string{"TOTAL", "", "", "", "", "", fmt.Sprintf("%.2f", totalPnL), fmt.Sprintf("%.2f", totalBuy), fmt.Sprintf("%.2f", totalSell)})
	return outPath, nil
}

// SummarizeToday summarizes the current UTC day.
func SummarizeToday() (string, error) { return SummarizeDay(time.Now().UTC()) }

// ShouldRunNow reports whether yesterday's summary is still missing.
// There is no market close in crypto; days roll at UTC midnight.
func ShouldRunNow() (bool, string) {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	outPath := dayCSVPath(yesterday)
	if _, err := os.Stat(dayTradeFile(yesterday)); err != nil {
		return false, outPath
	}
	if _, err := os.Stat(outPath); errors.Is(err, os.ErrNotExist) {
		return true, outPath
	}
	return false, outPath
}
