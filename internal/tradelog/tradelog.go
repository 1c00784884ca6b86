// Package tradelog appends executed trades to per-day JSONL journal
// files. The journal is an audit trail on top of the in-memory account;
// the eod package rebuilds daily summaries from it.
package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"crypto-paper-trader/internal/types"
)

var mu sync.Mutex

// Entry is one journal line. Field names match the canonical trade
// fields the normalizer produces.
type Entry struct {
	Time     string  `json:"time"`
	Symbol   string  `json:"symbol"`
	Action   string  `json:"action"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

// Crypto trades around the clock; journal days roll over at UTC
// midnight.
func dailyFilepath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

// Append writes the trade to today's journal file.
func Append(tr types.Trade) error {
	mu.Lock()
	defer mu.Unlock()

	at := tr.Time
	if at.IsZero() {
		at = time.Now()
	}
	e := Entry{
		Time:     at.UTC().Format("2006-01-02 15:04:05"),
		Symbol:   tr.Symbol,
		Action:   string(tr.Action),
		Quantity: tr.Quantity,
		Price:    tr.Price,
		Total:    tr.Total,
	}

	p := dailyFilepath(at)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(e)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files older than retentionDays.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if info.ModTime().Before(cutoff) {
			compressFile(p)
		}
		return nil
	})
}

func compressFile(p string) {
	gz := p + ".gz"
	// if the gz already exists, just drop the original
	if _, err := os.Stat(gz); err == nil {
		_ = os.Remove(p)
		return
	}

	in, err := os.Open(p)
	if err != nil {
		return
	}
	defer in.Close()

	out, err := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err == nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(p)
	} else {
		_ = gw.Close()
		_ = out.Close()
	}
}
