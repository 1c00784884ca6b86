package ledgerobs

import (
	"context"
	"time"

	"crypto-paper-trader/internal/interfaces"
	"crypto-paper-trader/internal/logger"
	"crypto-paper-trader/internal/trace"
	"crypto-paper-trader/internal/types"
)

type observableLedger struct {
	ledger interfaces.Ledger
}

var _ interfaces.Ledger = (*observableLedger)(nil)

func Wrap(l interfaces.Ledger) interfaces.Ledger {
	return &observableLedger{ledger: l}
}

func (ol *observableLedger) Buy(ctx context.Context, symbol string, qty, price float64) (*types.OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "ledger.Buy")
	defer span.End()

	start := time.Now()
	res, err := ol.ledger.Buy(ctx, symbol, qty, price)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Buy rejected", err,
			"symbol", symbol,
			"qty", qty,
			"price", price,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Buy filled",
		"symbol", symbol,
		"qty", qty,
		"price", price,
		"cash_balance", res.CashBalance,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (ol *observableLedger) Sell(ctx context.Context, symbol string, qty, price float64) (*types.OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "ledger.Sell")
	defer span.End()

	start := time.Now()
	res, err := ol.ledger.Sell(ctx, symbol, qty, price)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Sell rejected", err,
			"symbol", symbol,
			"qty", qty,
			"price", price,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Sell filled",
		"symbol", symbol,
		"qty", qty,
		"price", price,
		"cash_balance", res.CashBalance,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (ol *observableLedger) BookProfit(ctx context.Context, symbol string) (*types.OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "ledger.BookProfit")
	defer span.End()

	res, err := ol.ledger.BookProfit(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Book profit failed", err, "symbol", symbol)
		return nil, err
	}
	if res == nil {
		logger.InfoSkip(ctx, 1, "Nothing to book", "symbol", symbol)
		return nil, nil
	}

	logger.InfoSkip(ctx, 1, "Profit booked",
		"symbol", symbol,
		"action", res.Trade.Action,
		"qty", res.Trade.Quantity,
		"price", res.Trade.Price,
		"realized_pnl", res.Position.RealizedPnL,
		"live_quote", res.Live,
	)
	return res, nil
}

func (ol *observableLedger) BookAllProfits(ctx context.Context) (*types.BookAllResult, error) {
	ctx, span := trace.StartSpan(ctx, "ledger.BookAllProfits")
	defer span.End()

	res, err := ol.ledger.BookAllProfits(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Book all profits failed", err)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "All profits booked",
		"booked", res.Booked,
		"realized_pnl", res.RealizedPnL,
		"cash_balance", res.CashBalance,
		"stale_quotes", len(res.Stale),
	)
	return res, nil
}

func (ol *observableLedger) CashBalance() float64 { return ol.ledger.CashBalance() }

func (ol *observableLedger) Positions() []types.Position { return ol.ledger.Positions() }

func (ol *observableLedger) Trades() []types.Trade { return ol.ledger.Trades() }
