package deposit

import (
	"context"

	"quicksend/internal/ledger"
	"quicksend/internal/models"

	"github.com/shopspring/decimal"
)

// ChargeStatus is the settlement state the gateway reports for a charge.
type ChargeStatus string

const (
	ChargeSucceeded      ChargeStatus = "succeeded"
	ChargeRequiresAction ChargeStatus = "requires_action"
	ChargeRejected       ChargeStatus = "rejected"
)

// ChargeResult is the gateway's answer to a charge request.
type ChargeResult struct {
	Status ChargeStatus
	// Reference identifies the charge at the gateway. It doubles as the
	// ledger operation id of the eventual credit.
	Reference string
	// ActionToken lets the client complete an out-of-band confirmation step
	// when Status is ChargeRequiresAction.
	ActionToken string
}

// Gateway charges a payment method at the external payment processor.
type Gateway interface {
	Charge(ctx context.Context, amountInCents int64, currency, paymentMethodID string) (*ChargeResult, error)
}

// WalletReader resolves the wallet being credited.
type WalletReader interface {
	GetByUserID(userID uint) (*models.Wallet, error)
	GetByID(id uint) (*models.Wallet, error)
	InvalidateCache(ctx context.Context, userID uint)
}

// Ledger is the atomic apply primitive plus the existence check that keeps
// reconciliation idempotent.
type Ledger interface {
	Apply(ctx context.Context, op ledger.Operation) error
	HasEntry(ctx context.Context, operationID string, walletID uint) (bool, error)
}

// PendingCredits records settled charges awaiting their ledger credit.
type PendingCredits interface {
	Record(ctx context.Context, credit *models.PendingCredit) error
	GetByReference(ctx context.Context, reference string) (*models.PendingCredit, error)
	MarkCredited(ctx context.Context, reference string) error
}

// Service credits wallets from confirmed external charges.
type Service interface {
	Deposit(ctx context.Context, userID uint, amountInCents int64, currency, paymentMethodID string) (*Result, error)
	Reconcile(ctx context.Context, reference string) (*Result, error)
}

// Result statuses
const (
	StatusOK             = "ok"
	StatusRequiresAction = "requires_action"
)

// Result is the outcome of a deposit or reconciliation.
type Result struct {
	Status      string          `json:"status"`
	NewBalance  decimal.Decimal `json:"new_balance,omitempty"`
	ActionToken string          `json:"action_token,omitempty"`
	Reference   string          `json:"reference,omitempty"`
}
