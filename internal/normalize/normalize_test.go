package normalize

import (
	"testing"
	"time"

	"crypto-paper-trader/internal/types"
)

func TestTrade_MixedCasingAndVariants(t *testing.T) {
	row := map[string]any{
		"Time":        "2024-03-01 10:30:00",
		"Symbol":      "btcusdt",
		"Action":      "Buy",
		"Qty":         0.5,
		"Price (USD)": 50000.0,
		"Total (USD)": 25000.0,
	}

	tr := Trade(row)

	if tr.Symbol != "BTCUSDT" {
		t.Errorf("expected BTCUSDT, got %s", tr.Symbol)
	}
	if tr.Action != types.ActionBuy {
		t.Errorf("expected BUY, got %s", tr.Action)
	}
	if tr.Quantity != 0.5 {
		t.Errorf("expected quantity 0.5, got %f", tr.Quantity)
	}
	if tr.Price != 50000 {
		t.Errorf("expected price 50000, got %f", tr.Price)
	}
	if tr.Total != 25000 {
		t.Errorf("expected total 25000, got %f", tr.Total)
	}
	want := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	if !tr.Time.Equal(want) {
		t.Errorf("expected time %v, got %v", want, tr.Time)
	}
}

func TestTrade_DuplicateColumnsCoalesce(t *testing.T) {
	// "price" and "Price (USD)" collapse onto the same canonical
	// field; the empty one must lose.
	row := map[string]any{
		"price":       "",
		"Price (USD)": 42.0,
		"symbol":      "ETHUSDT",
		"action":      "sell",
		"quantity":    1.0,
	}

	tr := Trade(row)
	if tr.Price != 42 {
		t.Errorf("expected coalesced price 42, got %f", tr.Price)
	}
	if tr.Action != types.ActionSell {
		t.Errorf("expected SELL, got %s", tr.Action)
	}
}

func TestTrade_MissingFieldsDefault(t *testing.T) {
	tr := Trade(map[string]any{"symbol": "DOGE"})

	if tr.Quantity != 0 {
		t.Errorf("missing quantity must default to 0, got %f", tr.Quantity)
	}
	if tr.Price != 0 {
		t.Errorf("missing price must default to 0, got %f", tr.Price)
	}
	if tr.Action != types.ActionUnknown {
		t.Errorf("missing action must default to UNKNOWN, got %s", tr.Action)
	}
	if !tr.Time.IsZero() {
		t.Errorf("missing time must stay zero, got %v", tr.Time)
	}
}

func TestTrade_StringNumbers(t *testing.T) {
	tr := Trade(map[string]any{
		"symbol":     "BTCUSDT",
		"side":       "BUY",
		"qty":        "0.25",
		"price_usdt": "48000.5",
	})

	if tr.Quantity != 0.25 {
		t.Errorf("expected quantity 0.25, got %f", tr.Quantity)
	}
	if tr.Price != 48000.5 {
		t.Errorf("expected price 48000.5, got %f", tr.Price)
	}
	if tr.Total != 0.25*48000.5 {
		t.Errorf("total must be derived, got %f", tr.Total)
	}
}

func TestTrades_PreservesInputOrder(t *testing.T) {
	rows := []map[string]any{
		{"symbol": "BTCUSDT", "action": "buy", "qty": 1.0, "price": 100.0},
		{"symbol": "ETHUSDT", "action": "sell", "qty": 2.0, "price": 200.0},
		{"symbol": "DOGEUSDT", "action": "buy", "qty": 3.0, "price": 0.1},
	}

	trades := Trades(rows)
	if len(trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(trades))
	}
	want := []string{"BTCUSDT", "ETHUSDT", "DOGEUSDT"}
	for i, sym := range want {
		if trades[i].Symbol != sym {
			t.Errorf("row %d: expected %s, got %s", i, sym, trades[i].Symbol)
		}
	}
}

func TestTrade_UnknownKeysIgnoredWithoutError(t *testing.T) {
	tr := Trade(map[string]any{
		"symbol":        "BTCUSDT",
		"action":        "buy",
		"qty":           1.0,
		"price":         100.0,
		"order_note":    "manual entry",
		"broker_fee_bp": 5,
	})

	if tr.Symbol != "BTCUSDT" || tr.Quantity != 1 || tr.Price != 100 {
		t.Errorf("unknown keys must not disturb canonical fields: %+v", tr)
	}
}

func TestTrade_UnixTimestamp(t *testing.T) {
	tr := Trade(map[string]any{"symbol": "BTCUSDT", "time": "1709287800"})
	if tr.Time.IsZero() {
		t.Error("expected unix timestamp to parse")
	}
}
