package ledger

import (
	"math"

	"crypto-paper-trader/internal/types"
)

// applyBuy returns the position after buying qty at price.
//
// A buy against a flat or long position blends the cost basis and never
// realizes PnL. A buy against a short first covers the short, realizing
// (avg - price) per covered unit; any remainder opens a long at price.
// Crossing zero resets the basis to the crossing trade's price so a
// stale short basis never leaks into the new long.
func applyBuy(p types.Position, qty, price float64) types.Position {
	q := p.Quantity
	if q >= 0 {
		newQty := q + qty
		if newQty != 0 {
			p.AvgPrice = (q*p.AvgPrice + qty*price) / newQty
		} else {
			p.AvgPrice = price
		}
		p.Quantity = newQty
		return p
	}

	cover := math.Min(qty, -q)
	p.RealizedPnL += (p.AvgPrice - price) * cover
	p.Quantity = q + qty
	if p.Quantity >= 0 {
		p.AvgPrice = price
	}
	return p
}

// applySell returns the position after selling qty at price.
//
// Selling against a long realizes (price - avg) per closed unit; any
// quantity beyond the held amount opens a short at price. Selling flat
// or short extends the short with a size-weighted basis blend, the
// mirror of the buy-side average.
func applySell(p types.Position, qty, price float64) types.Position {
	q := p.Quantity
	if q > 0 {
		closed := math.Min(qty, q)
		p.RealizedPnL += (price - p.AvgPrice) * closed
		p.Quantity = q - qty
		if p.Quantity <= 0 {
			p.AvgPrice = price
		}
		return p
	}

	size := -q
	newSize := size + qty
	if newSize != 0 {
		p.AvgPrice = (size*p.AvgPrice + qty*price) / newSize
	} else {
		p.AvgPrice = price
	}
	p.Quantity = q - qty
	return p
}

// Apply replays one trade onto a position. Trades with an unknown
// action contribute nothing; journal replay depends on that.
func Apply(p types.Position, t types.Trade) types.Position {
	switch t.Action {
	case types.ActionBuy:
		return applyBuy(p, t.Quantity, t.Price)
	case types.ActionSell:
		return applySell(p, t.Quantity, t.Price)
	default:
		return p
	}
}
