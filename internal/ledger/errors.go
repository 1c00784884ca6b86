package ledger

import "errors"

var (
	// ErrInvalidQuantity is returned when a buy or sell requests a
	// quantity <= 0. The account is left unchanged.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInsufficientBalance is returned when a buy costs more than the
	// available cash balance. The account is left unchanged.
	ErrInsufficientBalance = errors.New("insufficient balance")
)
