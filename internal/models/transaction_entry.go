package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry kinds
const (
	EntryKindDeposit  = "deposit"
	EntryKindWithdraw = "withdraw"
	EntryKindSend     = "send"
	EntryKindReceived = "received"
)

// TransactionEntry is one immutable record of a single wallet's gain or loss
// in one logical operation. Entries are append-only: nothing in the codebase
// updates or deletes them. A peer-to-peer transfer writes two entries (send on
// the sender, received on the recipient) sharing one OperationID; a deposit
// writes exactly one. The composite unique index on (operation_id, wallet_id)
// prevents the same operation from ever being applied twice to one wallet.
type TransactionEntry struct {
	ID          string          `gorm:"primarykey;size:36"`
	WalletID    uint            `gorm:"not null;index;uniqueIndex:idx_entries_operation_wallet"`
	Wallet      *Wallet         `gorm:"foreignKey:WalletID" json:"-"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,2);not null"` // positive magnitude
	Kind        string          `gorm:"size:16;not null"`
	OperationID string          `gorm:"size:64;not null;uniqueIndex:idx_entries_operation_wallet"`
	CreatedAt   time.Time
}
