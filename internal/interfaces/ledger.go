package interfaces

import (
	"context"

	"crypto-paper-trader/internal/types"
)

// Ledger is the mutating and query surface of a paper-trading account.
type Ledger interface {
	Buy(ctx context.Context, symbol string, qty, price float64) (*types.OrderResult, error)
	Sell(ctx context.Context, symbol string, qty, price float64) (*types.OrderResult, error)
	BookProfit(ctx context.Context, symbol string) (*types.OrderResult, error)
	BookAllProfits(ctx context.Context) (*types.BookAllResult, error)
	CashBalance() float64
	Positions() []types.Position
	Trades() []types.Trade
}
