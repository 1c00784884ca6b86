package oracle

import (
	"sync"
	"time"

	"crypto-paper-trader/internal/types"
)

// quoteCache keeps the last quote per pair with thread-safe access.
// Fresh entries short-circuit repeated fetches; stale entries back the
// fallback path when the exchange is unreachable.
type quoteCache struct {
	mu      sync.RWMutex
	entries map[string]cachedQuote
	ttl     time.Duration
}

type cachedQuote struct {
	quote types.PriceQuote
	at    time.Time
}

func newQuoteCache(ttl time.Duration) *quoteCache {
	return &quoteCache{
		entries: make(map[string]cachedQuote),
		ttl:     ttl,
	}
}

// fresh returns the cached quote if it is within the TTL.
func (c *quoteCache) fresh(pair string) (types.PriceQuote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[pair]
	if !ok || time.Since(entry.at) > c.ttl {
		return types.PriceQuote{}, false
	}
	return entry.quote, true
}

// last returns the most recent cached quote regardless of age.
func (c *quoteCache) last(pair string) (types.PriceQuote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[pair]
	return entry.quote, ok
}

func (c *quoteCache) set(pair string, quote types.PriceQuote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pair] = cachedQuote{quote: quote, at: time.Now()}
}
