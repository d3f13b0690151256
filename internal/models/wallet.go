package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds a single user's funds. The balance column is a fixed-point
// numeric and may only be mutated through the ledger's atomic apply path.
type Wallet struct {
	ID        uint            `gorm:"primarykey"`
	UserID    uint            `gorm:"uniqueIndex;not null"`
	Balance   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0;check:chk_wallets_balance_nonnegative,balance >= 0"`
	Currency  string          `gorm:"default:'USD'"`
	Status    string          `gorm:"default:'active'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	// Every wallet starts empty regardless of what the caller set.
	w.Balance = decimal.Zero
	return nil
}
