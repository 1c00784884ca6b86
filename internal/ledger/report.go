package ledger

import (
	"context"

	"crypto-paper-trader/internal/interfaces"
	"crypto-paper-trader/internal/logger"
	"crypto-paper-trader/internal/types"
)

// UnrealizedPnL is the mark-to-market PnL of an open position. The
// signed quantity makes the sign correct for shorts.
func UnrealizedPnL(pos types.Position, livePrice float64) float64 {
	return (livePrice - pos.AvgPrice) * pos.Quantity
}

// MarketValue is the position's current liquidation value.
func MarketValue(pos types.Position, livePrice float64) float64 {
	return livePrice * pos.Quantity
}

// Reporter derives PnL views from a ledger and a price source. It
// never mutates the account.
type Reporter struct {
	ledger interfaces.Ledger
	prices interfaces.PriceSource
}

// NewReporter creates a read-only reporter over the given ledger.
func NewReporter(l interfaces.Ledger, prices interfaces.PriceSource) *Reporter {
	return &Reporter{ledger: l, prices: prices}
}

// Report builds the full portfolio view: per-position market value and
// unrealized/realized/total PnL, total portfolio value and total PnL.
// When a quote cannot be fetched the position's average price stands in
// and the row is flagged as non-live, matching the fail-soft oracle
// contract.
func (r *Reporter) Report(ctx context.Context) (*types.PnLReport, error) {
	cash := r.ledger.CashBalance()
	report := &types.PnLReport{
		CashBalance:    cash,
		PortfolioValue: cash,
	}

	for _, pos := range r.ledger.Positions() {
		livePrice := pos.AvgPrice
		live := false
		quote, err := r.prices.GetPrice(ctx, pos.Symbol)
		if err != nil {
			logger.Warn(ctx, "No quote for position, marking at average price", "symbol", pos.Symbol, "error", err)
		} else {
			livePrice = quote.Price
			live = quote.Live
		}

		row := types.PositionReport{
			Symbol:        pos.Symbol,
			Quantity:      pos.Quantity,
			AvgPrice:      pos.AvgPrice,
			LivePrice:     livePrice,
			LiveQuote:     live,
			MarketValue:   MarketValue(pos, livePrice),
			UnrealizedPnL: UnrealizedPnL(pos, livePrice),
			RealizedPnL:   pos.RealizedPnL,
		}
		row.TotalPnL = row.UnrealizedPnL + row.RealizedPnL

		report.Positions = append(report.Positions, row)
		report.PortfolioValue += row.MarketValue
		report.TotalPnL += row.TotalPnL
	}
	return report, nil
}

// TradePnL marks every historical trade against the current live price
// of its symbol: buys gain when the price has risen since the trade,
// sells gain when it has fallen. This is a display metric only and is
// independent of the position book's running average.
func (r *Reporter) TradePnL(ctx context.Context) ([]types.TradePnL, error) {
	trades := r.ledger.Trades()
	out := make([]types.TradePnL, 0, len(trades))
	quotes := make(map[string]types.PriceQuote)

	for _, tr := range trades {
		quote, ok := quotes[tr.Symbol]
		if !ok {
			var err error
			quote, err = r.prices.GetPrice(ctx, tr.Symbol)
			if err != nil {
				logger.Warn(ctx, "No quote for trade, skipping PnL mark", "symbol", tr.Symbol, "error", err)
				quote = types.PriceQuote{Symbol: tr.Symbol, Price: tr.Price}
			}
			quotes[tr.Symbol] = quote
		}

		var pnl float64
		switch tr.Action {
		case types.ActionBuy:
			pnl = (quote.Price - tr.Price) * tr.Quantity
		case types.ActionSell:
			pnl = (tr.Price - quote.Price) * tr.Quantity
		}
		out = append(out, types.TradePnL{Trade: tr, LivePrice: quote.Price, PnL: pnl})
	}
	return out, nil
}
