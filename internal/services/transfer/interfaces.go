package transfer

import (
	"context"

	"quicksend/internal/ledger"
	"quicksend/internal/models"

	"github.com/shopspring/decimal"
)

// UserDirectory resolves recipients by their transfer lookup key.
type UserDirectory interface {
	GetByPhone(phone string) (*models.User, error)
}

// WalletReader resolves the wallets taking part in a transfer.
type WalletReader interface {
	GetByUserID(userID uint) (*models.Wallet, error)
	InvalidateCache(ctx context.Context, userID uint)
}

// Ledger is the atomic apply primitive the engine submits operations to.
type Ledger interface {
	Apply(ctx context.Context, op ledger.Operation) error
}

// Service moves funds between two user wallets.
type Service interface {
	Transfer(ctx context.Context, senderID uint, recipientPhone string, amount decimal.Decimal) (*Receipt, error)
}

// Receipt confirms a completed transfer.
type Receipt struct {
	OperationID    string          `json:"operation_id"`
	SenderID       uint            `json:"sender_id"`
	RecipientID    uint            `json:"recipient_id"`
	RecipientPhone string          `json:"recipient_phone"`
	Amount         decimal.Decimal `json:"amount"`
}
