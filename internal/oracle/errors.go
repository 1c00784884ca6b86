package oracle

import "errors"

var (
	// ErrPriceUnavailable means no live, cached or fallback quote could
	// be produced. Callers should treat this as exceptional; the oracle
	// prefers degrading to a non-live quote.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrUnknownSymbol means the symbol maps to no configured exchange
	// pair. Returned before any network call.
	ErrUnknownSymbol = errors.New("unknown symbol")
)
