package ledger

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"crypto-paper-trader/internal/interfaces"
	"crypto-paper-trader/internal/logger"
	"crypto-paper-trader/internal/types"
)

const defaultEpsilon = 1e-8

// Params configures a new account.
type Params struct {
	StartingBalance float64
	// Epsilon is the smallest position magnitude worth booking.
	// Defaults to 1e-8 when zero.
	Epsilon float64
	Prices  interfaces.PriceSource
}

// Account owns the cash balance, the position book and the ordered
// trade history of one paper-trading session.
//
// Every operation runs under the account's exclusive lock; two
// operations on the same account never interleave their
// read-modify-write steps. Price fetches happen before the lock is
// taken, never while holding it.
type Account struct {
	mu      sync.RWMutex
	state   accountState
	prices  interfaces.PriceSource
	epsilon float64
}

// accountState is the mutable core of an account. Keeping it separate
// lets BookAllProfits apply a whole batch to a clone and commit it in
// one assignment.
type accountState struct {
	cash      float64
	positions map[string]*types.Position
	trades    []types.Trade
}

// NewAccount creates an account with the given starting balance, no
// positions and an empty trade history.
func NewAccount(p Params) *Account {
	eps := p.Epsilon
	if eps == 0 {
		eps = defaultEpsilon
	}
	return &Account{
		state: accountState{
			cash:      p.StartingBalance,
			positions: make(map[string]*types.Position),
		},
		prices:  p.Prices,
		epsilon: eps,
	}
}

// Restore rebuilds an account from a serialized state.
func Restore(st types.AccountState, p Params) *Account {
	a := NewAccount(p)
	a.state.cash = st.CashBalance
	for sym, pos := range st.Positions {
		cp := pos
		a.state.positions[canonicalSymbol(sym)] = &cp
	}
	a.state.trades = append(a.state.trades, st.Trades...)
	return a
}

func canonicalSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Buy debits qty*price from cash, updates the position book and appends
// a trade. Fails without mutating anything when qty <= 0 or the cost
// exceeds the cash balance.
func (a *Account) Buy(ctx context.Context, symbol string, qty, price float64) (*types.OrderResult, error) {
	symbol = canonicalSymbol(symbol)
	if qty <= 0 {
		return nil, fmt.Errorf("buy %s qty %v: %w", symbol, qty, ErrInvalidQuantity)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	res, err := a.state.buy(symbol, qty, price, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	logger.Trade(ctx, symbol, string(types.ActionBuy), qty, price, "cash_balance", res.CashBalance)
	return res, nil
}

// Sell credits qty*price to cash unconditionally (permissive short
// selling), updates the position book and appends a trade.
func (a *Account) Sell(ctx context.Context, symbol string, qty, price float64) (*types.OrderResult, error) {
	symbol = canonicalSymbol(symbol)
	if qty <= 0 {
		return nil, fmt.Errorf("sell %s qty %v: %w", symbol, qty, ErrInvalidQuantity)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	res := a.state.sell(symbol, qty, price, time.Now().UTC())
	logger.Trade(ctx, symbol, string(types.ActionSell), qty, price, "cash_balance", res.CashBalance)
	return res, nil
}

// BookProfit closes the symbol's full position at the current live
// price: a sell when the position is flat-or-long, a buy when short.
// Returns (nil, nil) when the position magnitude is within epsilon.
// The quote is fetched before the account lock is taken.
func (a *Account) BookProfit(ctx context.Context, symbol string) (*types.OrderResult, error) {
	symbol = canonicalSymbol(symbol)
	if math.Abs(a.positionQty(symbol)) <= a.epsilon {
		return nil, nil
	}

	quote, err := a.prices.GetPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("book profit %s: %w", symbol, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	qty := 0.0
	if pos := a.state.positions[symbol]; pos != nil {
		qty = pos.Quantity
	}
	if math.Abs(qty) <= a.epsilon {
		return nil, nil
	}

	var res *types.OrderResult
	if qty >= 0 {
		res = a.state.sell(symbol, qty, quote.Price, time.Now().UTC())
	} else {
		res, err = a.state.buy(symbol, -qty, quote.Price, time.Now().UTC())
		if err != nil {
			return nil, err
		}
	}
	res.Live = quote.Live
	logger.Trade(ctx, symbol, string(res.Trade.Action), res.Trade.Quantity, quote.Price,
		"cash_balance", res.CashBalance, "realized_pnl", res.Position.RealizedPnL, "live_quote", quote.Live)
	return res, nil
}

// BookAllProfits books every symbol with a non-negligible position and
// credits the sum of realized deltas to the cash balance. All quotes
// are fetched up front; the batch then runs against a clone of the
// account state and commits in one step, so readers observe either
// none or all of it. A failing leg leaves the account untouched.
func (a *Account) BookAllProfits(ctx context.Context) (*types.BookAllResult, error) {
	symbols := a.bookableSymbols()

	quotes := make(map[string]types.PriceQuote, len(symbols))
	var stale []string
	for _, sym := range symbols {
		quote, err := a.prices.GetPrice(ctx, sym)
		if err != nil {
			return nil, fmt.Errorf("book all profits %s: %w", sym, err)
		}
		quotes[sym] = quote
		if !quote.Live {
			stale = append(stale, sym)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.state.clone()
	now := time.Now().UTC()
	realized := 0.0
	booked := 0
	for _, sym := range symbols {
		pos := next.positions[sym]
		if pos == nil || math.Abs(pos.Quantity) <= a.epsilon {
			continue
		}
		before := pos.RealizedPnL
		if pos.Quantity >= 0 {
			next.sell(sym, pos.Quantity, quotes[sym].Price, now)
		} else {
			if _, err := next.buy(sym, -pos.Quantity, quotes[sym].Price, now); err != nil {
				return nil, fmt.Errorf("book all profits %s: %w", sym, err)
			}
		}
		realized += pos.RealizedPnL - before
		booked++
	}
	next.cash += realized
	a.state = *next

	logger.Info(ctx, "Booked all profits", "booked", booked, "realized_pnl", realized, "cash_balance", a.state.cash)
	return &types.BookAllResult{
		Booked:      booked,
		RealizedPnL: realized,
		CashBalance: a.state.cash,
		Stale:       stale,
	}, nil
}

// CashBalance returns the current cash balance.
func (a *Account) CashBalance() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.cash
}

// Positions returns a copy of every position, sorted by symbol.
// Zero-quantity positions are kept so realized PnL stays visible.
func (a *Account) Positions() []types.Position {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]types.Position, 0, len(a.state.positions))
	for _, pos := range a.state.positions {
		out = append(out, *pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Trades returns a copy of the ordered trade history.
func (a *Account) Trades() []types.Trade {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]types.Trade(nil), a.state.trades...)
}

// State exports the account for persistence. The result shares nothing
// with the live account.
func (a *Account) State() types.AccountState {
	a.mu.RLock()
	defer a.mu.RUnlock()

	positions := make(map[string]types.Position, len(a.state.positions))
	for sym, pos := range a.state.positions {
		positions[sym] = *pos
	}
	return types.AccountState{
		SavedAt:     time.Now().Unix(),
		CashBalance: a.state.cash,
		Positions:   positions,
		Trades:      append([]types.Trade(nil), a.state.trades...),
	}
}

func (a *Account) positionQty(symbol string) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if pos := a.state.positions[symbol]; pos != nil {
		return pos.Quantity
	}
	return 0
}

func (a *Account) bookableSymbols() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []string
	for sym, pos := range a.state.positions {
		if math.Abs(pos.Quantity) > a.epsilon {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

func (s *accountState) buy(symbol string, qty, price float64, at time.Time) (*types.OrderResult, error) {
	cost := qty * price
	if cost > s.cash {
		return nil, fmt.Errorf("buy %s cost %.2f exceeds balance %.2f: %w", symbol, cost, s.cash, ErrInsufficientBalance)
	}

	s.cash -= cost
	pos := s.positions[symbol]
	if pos == nil {
		pos = &types.Position{Symbol: symbol}
		s.positions[symbol] = pos
	}
	*pos = applyBuy(*pos, qty, price)

	tr := types.Trade{Time: at, Symbol: symbol, Action: types.ActionBuy, Quantity: qty, Price: price, Total: cost}
	s.trades = append(s.trades, tr)
	return &types.OrderResult{Trade: tr, Position: *pos, CashBalance: s.cash, Live: true}, nil
}

func (s *accountState) sell(symbol string, qty, price float64, at time.Time) *types.OrderResult {
	proceeds := qty * price
	s.cash += proceeds
	pos := s.positions[symbol]
	if pos == nil {
		pos = &types.Position{Symbol: symbol}
		s.positions[symbol] = pos
	}
	*pos = applySell(*pos, qty, price)

	tr := types.Trade{Time: at, Symbol: symbol, Action: types.ActionSell, Quantity: qty, Price: price, Total: proceeds}
	s.trades = append(s.trades, tr)
	return &types.OrderResult{Trade: tr, Position: *pos, CashBalance: s.cash, Live: true}
}

func (s *accountState) clone() *accountState {
	positions := make(map[string]*types.Position, len(s.positions))
	for sym, pos := range s.positions {
		cp := *pos
		positions[sym] = &cp
	}
	return &accountState{
		cash:      s.cash,
		positions: positions,
		trades:    append([]types.Trade(nil), s.trades...),
	}
}
