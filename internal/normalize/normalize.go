// Package normalize turns loosely-typed trade records into canonical
// trades. Journals and imports accumulate rows written by different
// versions of the dashboard, with drifting key spellings ("Qty",
// "Price (USD)", "price_usdt") and duplicate columns; everything past
// this boundary works on typed trades only.
package normalize

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"crypto-paper-trader/internal/types"
)

// synonyms maps lower-cased, trimmed raw keys to canonical field names.
// Unknown keys pass through unchanged and are ignored downstream.
var synonyms = map[string]string{
	"time":        "time",
	"timestamp":   "time",
	"date":        "time",
	"symbol":      "symbol",
	"ticker":      "symbol",
	"action":      "action",
	"side":        "action",
	"quantity":    "quantity",
	"qty":         "quantity",
	"amount":      "quantity",
	"price":       "price",
	"price (usd)": "price",
	"price (inr)": "price",
	"price_usd":   "price",
	"price_usdt":  "price",
	"total":       "total",
	"total (usd)": "total",
	"total (inr)": "total",
	"total_usd":   "total",
}

// timeLayouts are tried in order when parsing the time field.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Trades converts raw records into canonical trades, preserving input
// order. It never fails: missing quantity or price default to 0, a
// missing or unrecognized action becomes UNKNOWN, and keys that
// collapse onto the same canonical field coalesce to the first
// non-empty value.
func Trades(rows []map[string]any) []types.Trade {
	out := make([]types.Trade, 0, len(rows))
	for _, row := range rows {
		out = append(out, Trade(row))
	}
	return out
}

// Trade normalizes a single raw record.
func Trade(row map[string]any) types.Trade {
	fields := canonicalFields(row)

	tr := types.Trade{
		Time:     parseTime(fields["time"]),
		Symbol:   strings.ToUpper(strings.TrimSpace(toString(fields["symbol"]))),
		Action:   parseAction(fields["action"]),
		Quantity: toFloat(fields["quantity"]),
		Price:    toFloat(fields["price"]),
	}
	tr.Total = tr.Quantity * tr.Price
	return tr
}

// canonicalFields renames keys through the synonym table and coalesces
// duplicates by keeping the first non-empty value. Map iteration order
// is not defined, so keys are scanned in sorted order to keep the
// coalescing deterministic.
func canonicalFields(row map[string]any) map[string]any {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make(map[string]any, len(row))
	for _, k := range keys {
		name := strings.ToLower(strings.TrimSpace(k))
		if canonical, ok := synonyms[name]; ok {
			name = canonical
		}
		if existing, ok := fields[name]; ok && !isEmpty(existing) {
			continue
		}
		fields[name] = row[k]
	}
	return fields
}

func parseAction(v any) types.Action {
	switch strings.ToUpper(strings.TrimSpace(toString(v))) {
	case "BUY":
		return types.ActionBuy
	case "SELL":
		return types.ActionSell
	default:
		return types.ActionUnknown
	}
}

func parseTime(v any) time.Time {
	s := strings.TrimSpace(toString(v))
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC()
	}
	return time.Time{}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	default:
		return 0
	}
}
