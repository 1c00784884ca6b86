package types

import "time"

// Action is the direction of a trade. Unknown actions come from
// malformed journal rows and contribute nothing to PnL.
type Action string

const (
	ActionBuy     Action = "BUY"
	ActionSell    Action = "SELL"
	ActionUnknown Action = "UNKNOWN"
)

// Trade is an immutable entry in the account's trade history.
type Trade struct {
	Time     time.Time `json:"time"`
	Symbol   string    `json:"symbol"`
	Action   Action    `json:"action"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	Total    float64   `json:"total"`
}

// Position is the running state for one symbol. Quantity is signed:
// negative means short. AvgPrice is only meaningful while Quantity != 0.
type Position struct {
	Symbol      string  `json:"symbol"`
	Quantity    float64 `json:"quantity"`
	AvgPrice    float64 `json:"avg_price"`
	RealizedPnL float64 `json:"realized_pnl"`
}

// PriceQuote is an ephemeral market price. Live is false when a cached
// or fallback value was substituted for a real fetch.
type PriceQuote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Live   bool    `json:"live"`
}

// OrderResult is returned by every mutating ledger operation.
type OrderResult struct {
	Trade       Trade    `json:"trade"`
	Position    Position `json:"position"`
	CashBalance float64  `json:"cash_balance"`
	Live        bool     `json:"live"`
}

// BookAllResult summarizes a book-all-profits batch.
type BookAllResult struct {
	Booked      int      `json:"booked"`
	RealizedPnL float64  `json:"realized_pnl"`
	CashBalance float64  `json:"cash_balance"`
	Stale       []string `json:"stale,omitempty"`
}

// PositionReport is one row of the PnL report.
type PositionReport struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	AvgPrice      float64 `json:"avg_price"`
	LivePrice     float64 `json:"live_price"`
	LiveQuote     bool    `json:"live_quote"`
	MarketValue   float64 `json:"market_value"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	RealizedPnL   float64 `json:"realized_pnl"`
	TotalPnL      float64 `json:"total_pnl"`
}

// PnLReport is the full read-only portfolio view.
type PnLReport struct {
	CashBalance    float64          `json:"cash_balance"`
	PortfolioValue float64          `json:"portfolio_value"`
	TotalPnL       float64          `json:"total_pnl"`
	Positions      []PositionReport `json:"positions"`
}

// TradePnL is the point-in-time view of a historical trade against the
// current live price. It is informational only and independent of the
// position book's running average.
type TradePnL struct {
	Trade     Trade   `json:"trade"`
	LivePrice float64 `json:"live_price"`
	PnL       float64 `json:"pnl"`
}

// AccountState is the serialized form of an account. It round-trips
// cash, positions and the ordered trade history losslessly.
type AccountState struct {
	SavedAt     int64               `json:"saved_at"`
	CashBalance float64             `json:"cash_balance"`
	Positions   map[string]Position `json:"positions"`
	Trades      []Trade             `json:"trades"`
}
