package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pending credit statuses
const (
	PendingCreditStatusPending  = "pending"
	PendingCreditStatusCredited = "credited"
)

// PendingCredit records an external charge that the payment gateway confirmed
// before the matching ledger credit was committed. It is written as soon as a
// charge settles so that, if the ledger commit then fails, a reconciler can
// retry the credit by gateway reference without charging the customer again.
type PendingCredit struct {
	ID        uint            `gorm:"primarykey"`
	WalletID  uint            `gorm:"not null;index"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Currency  string          `gorm:"size:8;not null"`
	Reference string          `gorm:"size:64;not null;uniqueIndex"` // gateway charge reference
	Status    string          `gorm:"size:16;not null;default:'pending'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
