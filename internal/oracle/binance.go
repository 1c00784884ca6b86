// Package oracle resolves symbols to current market prices. The
// primary source is the Binance spot ticker; when it cannot be reached
// the client degrades to the last cached quote, then to a configured
// fallback price, flagging either as non-live instead of failing the
// calling operation.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"crypto-paper-trader/internal/interfaces"
	"crypto-paper-trader/internal/logger"
	"crypto-paper-trader/internal/types"
)

const (
	defaultBaseURL  = "https://api.binance.com"
	defaultTimeout  = 5 * time.Second
	defaultCacheTTL = 30 * time.Second
)

// defaultPairs mirrors the dashboard's symbol map. Symbols already
// ending in USDT resolve without an entry.
var defaultPairs = map[string]string{
	"BTC":  "BTCUSDT",
	"ETH":  "ETHUSDT",
	"DOGE": "DOGEUSDT",
}

// Params configures the oracle client.
type Params struct {
	BaseURL       string
	Timeout       time.Duration
	CacheTTL      time.Duration
	FallbackPrice float64
	// Pairs maps short symbols to exchange pairs, e.g. BTC -> BTCUSDT.
	// Merged over the built-in defaults.
	Pairs map[string]string
}

// Client fetches quotes from the Binance spot API.
type Client struct {
	http     *resty.Client
	cache    *quoteCache
	fallback float64
	pairs    map[string]string
}

var _ interfaces.PriceSource = (*Client)(nil)

// New creates an oracle client.
func New(p Params) *Client {
	baseURL := p.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := p.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ttl := p.CacheTTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	pairs := make(map[string]string, len(defaultPairs)+len(p.Pairs))
	for k, v := range defaultPairs {
		pairs[k] = v
	}
	for k, v := range p.Pairs {
		pairs[strings.ToUpper(k)] = strings.ToUpper(v)
	}

	http := resty.New()
	http.SetBaseURL(baseURL)
	http.SetTimeout(timeout)

	return &Client{
		http:     http,
		cache:    newQuoteCache(ttl),
		fallback: p.FallbackPrice,
		pairs:    pairs,
	}
}

type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// GetPrice returns the current quote for symbol. A fresh cached quote
// is served without a network call. Fetch failures degrade to the last
// cached quote, then to the configured fallback price, both flagged
// Live=false. ErrPriceUnavailable is returned only when no fallback of
// any kind exists.
func (c *Client) GetPrice(ctx context.Context, symbol string) (types.PriceQuote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	pair, err := c.pair(symbol)
	if err != nil {
		return types.PriceQuote{}, err
	}

	if quote, ok := c.cache.fresh(pair); ok {
		quote.Symbol = symbol
		return quote, nil
	}

	price, fetchErr := c.fetch(ctx, pair)
	if fetchErr == nil {
		quote := types.PriceQuote{Symbol: symbol, Price: price, Live: true}
		c.cache.set(pair, quote)
		return quote, nil
	}
	logger.Warn(ctx, "Live price fetch failed", "symbol", symbol, "pair", pair, "error", fetchErr)

	if quote, ok := c.cache.last(pair); ok {
		quote.Symbol = symbol
		quote.Live = false
		return quote, nil
	}
	if c.fallback > 0 {
		return types.PriceQuote{Symbol: symbol, Price: c.fallback, Live: false}, nil
	}
	return types.PriceQuote{}, fmt.Errorf("%s: %w", symbol, ErrPriceUnavailable)
}

func (c *Client) fetch(ctx context.Context, pair string) (float64, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", pair).
		Get("/api/v3/ticker/price")
	if err != nil {
		return 0, err
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("ticker API status %d: %s", resp.StatusCode(), resp.String())
	}

	var ticker tickerResponse
	if err := json.Unmarshal(resp.Body(), &ticker); err != nil {
		return 0, fmt.Errorf("decode ticker response: %w", err)
	}
	// Binance encodes prices as strings; parse exactly before the
	// ledger's float arithmetic takes over.
	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return 0, fmt.Errorf("parse ticker price %q: %w", ticker.Price, err)
	}
	return price.InexactFloat64(), nil
}

func (c *Client) pair(symbol string) (string, error) {
	if pair, ok := c.pairs[symbol]; ok {
		return pair, nil
	}
	if strings.HasSuffix(symbol, "USDT") && len(symbol) > len("USDT") {
		return symbol, nil
	}
	return "", fmt.Errorf("%s: %w", symbol, ErrUnknownSymbol)
}
