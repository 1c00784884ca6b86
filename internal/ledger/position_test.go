package ledger

import (
	"math"
	"testing"
	"time"

	"crypto-paper-trader/internal/types"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestApplyBuy_WeightedAverage(t *testing.T) {
	p := types.Position{Symbol: "BTCUSDT"}

	p = applyBuy(p, 1, 100)
	p = applyBuy(p, 3, 200)

	// (1*100 + 3*200) / 4
	if !almostEqual(p.AvgPrice, 175) {
		t.Errorf("expected avg 175, got %f", p.AvgPrice)
	}
	if !almostEqual(p.Quantity, 4) {
		t.Errorf("expected qty 4, got %f", p.Quantity)
	}
	if p.RealizedPnL != 0 {
		t.Errorf("buys must not realize PnL, got %f", p.RealizedPnL)
	}
}

func TestApplyBuy_AverageIsQuantityWeightedMean(t *testing.T) {
	buys := []struct{ qty, price float64 }{
		{0.5, 40000}, {0.25, 48000}, {1.25, 52000},
	}

	p := types.Position{Symbol: "BTCUSDT"}
	var totalQty, totalCost float64
	for _, b := range buys {
		p = applyBuy(p, b.qty, b.price)
		totalQty += b.qty
		totalCost += b.qty * b.price
	}

	if !almostEqual(p.AvgPrice, totalCost/totalQty) {
		t.Errorf("expected avg %f, got %f", totalCost/totalQty, p.AvgPrice)
	}
}

func TestApplySell_RealizesAgainstAverage(t *testing.T) {
	p := types.Position{Symbol: "BTCUSDT"}
	p = applyBuy(p, 2, 100)
	p = applySell(p, 1, 150)

	if !almostEqual(p.RealizedPnL, 50) {
		t.Errorf("expected realized 50, got %f", p.RealizedPnL)
	}
	if !almostEqual(p.Quantity, 1) {
		t.Errorf("expected qty 1, got %f", p.Quantity)
	}
	if !almostEqual(p.AvgPrice, 100) {
		t.Errorf("partial close must keep basis, got %f", p.AvgPrice)
	}
}

func TestApplySell_CrossingLongToShort(t *testing.T) {
	p := types.Position{Symbol: "BTCUSDT"}
	p = applyBuy(p, 1, 100)
	p = applySell(p, 3, 120)

	// Realizes only the held quantity, then opens a short at the
	// crossing trade's price.
	if !almostEqual(p.RealizedPnL, 20) {
		t.Errorf("expected realized 20, got %f", p.RealizedPnL)
	}
	if !almostEqual(p.Quantity, -2) {
		t.Errorf("expected qty -2, got %f", p.Quantity)
	}
	if !almostEqual(p.AvgPrice, 120) {
		t.Errorf("crossing must reset basis to trade price, got %f", p.AvgPrice)
	}
}

func TestApplySell_ExtendShortBlendsBasis(t *testing.T) {
	p := types.Position{Symbol: "ETHUSDT"}
	p = applySell(p, 1, 3000)
	p = applySell(p, 1, 3200)

	if !almostEqual(p.Quantity, -2) {
		t.Errorf("expected qty -2, got %f", p.Quantity)
	}
	if !almostEqual(p.AvgPrice, 3100) {
		t.Errorf("expected blended short basis 3100, got %f", p.AvgPrice)
	}
	if p.RealizedPnL != 0 {
		t.Errorf("extending a short must not realize PnL, got %f", p.RealizedPnL)
	}
}

func TestApplyBuy_CoveringShortRealizes(t *testing.T) {
	p := types.Position{Symbol: "ETHUSDT"}
	p = applySell(p, 1, 3000)
	p = applyBuy(p, 1, 2800)

	// Short profits when the buy-back is below entry.
	if !almostEqual(p.RealizedPnL, 200) {
		t.Errorf("expected realized 200, got %f", p.RealizedPnL)
	}
	if !almostEqual(p.Quantity, 0) {
		t.Errorf("expected flat, got %f", p.Quantity)
	}
}

func TestApplyBuy_PartialCoverKeepsShortBasis(t *testing.T) {
	p := types.Position{Symbol: "ETHUSDT"}
	p = applySell(p, 2, 3000)
	p = applyBuy(p, 1, 2500)

	if !almostEqual(p.RealizedPnL, 500) {
		t.Errorf("expected realized 500, got %f", p.RealizedPnL)
	}
	if !almostEqual(p.Quantity, -1) {
		t.Errorf("expected qty -1, got %f", p.Quantity)
	}
	if !almostEqual(p.AvgPrice, 3000) {
		t.Errorf("partial cover must keep short basis, got %f", p.AvgPrice)
	}
}

func TestApplyBuy_CrossingShortToLong(t *testing.T) {
	p := types.Position{Symbol: "ETHUSDT"}
	p = applySell(p, 1, 3000)
	p = applyBuy(p, 3, 2900)

	if !almostEqual(p.RealizedPnL, 100) {
		t.Errorf("expected realized 100, got %f", p.RealizedPnL)
	}
	if !almostEqual(p.Quantity, 2) {
		t.Errorf("expected qty 2, got %f", p.Quantity)
	}
	if !almostEqual(p.AvgPrice, 2900) {
		t.Errorf("crossing must reset basis to trade price, got %f", p.AvgPrice)
	}
}

func TestApply_UnknownActionIsNoop(t *testing.T) {
	p := types.Position{Symbol: "BTCUSDT", Quantity: 1, AvgPrice: 100}
	got := Apply(p, types.Trade{
		Time:     time.Now(),
		Symbol:   "BTCUSDT",
		Action:   types.ActionUnknown,
		Quantity: 5,
		Price:    500,
	})

	if got != p {
		t.Errorf("unknown action must not change the position: %+v", got)
	}
}
