package ledger

import "errors"

var (
	ErrEmptyOperation    = errors.New("ledger operation contains no mutations")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrConflict signals a concurrent mutation of the same operation was
	// detected. The operation is already applied or may be retried.
	ErrConflict = errors.New("concurrent ledger mutation detected")
	// ErrStorage wraps durable-store failures. The operation was fully rolled
	// back and the caller may retry.
	ErrStorage = errors.New("ledger storage failure")
)
