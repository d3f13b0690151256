package deposit

import "errors"

var (
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrWalletNotFound   = errors.New("wallet not found")
	ErrPaymentRejected  = errors.New("payment rejected")
	ErrUnknownReference = errors.New("unknown charge reference")
	// ErrCreditFailed means the gateway captured the funds but the ledger
	// credit did not commit. The charge is recorded as a pending credit and
	// the caller may retry via Reconcile.
	ErrCreditFailed = errors.New("charge settled but wallet credit failed, retry reconciliation")
)
