package interfaces

import (
	"context"

	"crypto-paper-trader/internal/types"
)

// PriceSource produces a current market quote for a symbol. It must
// return within a bounded time; implementations prefer substituting a
// non-live fallback quote over failing the call.
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (types.PriceQuote, error)
}
