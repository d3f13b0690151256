package transfer

import "errors"

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrSenderNotFound    = errors.New("sender not found")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrSelfTransfer      = errors.New("cannot transfer to self")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
