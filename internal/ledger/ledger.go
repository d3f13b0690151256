package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"quicksend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mutation is one wallet's part of a ledger operation: a signed balance delta
// and the kind of entry recording it. The persisted entry amount is always the
// positive magnitude of the delta.
type Mutation struct {
	WalletID uint
	Delta    decimal.Decimal
	Kind     string
}

// Operation is an atomic batch of mutations sharing one logical identity.
// A transfer is one operation with two mutations; a deposit is one operation
// with a single mutation whose ID is the gateway charge reference.
type Operation struct {
	ID        string
	Mutations []Mutation
}

// Store provides the atomic apply primitive for balance mutations.
type Store interface {
	Apply(ctx context.Context, op Operation) error
	HasEntry(ctx context.Context, operationID string, walletID uint) (bool, error)
}

type store struct {
	db *gorm.DB
}

// New creates a ledger store backed by the given database.
func New(db *gorm.DB) Store {
	if db == nil {
		panic("db is required")
	}
	return &store{db: db}
}

// Apply commits all balance updates and entry appends of op as a single atomic
// unit, or none of them. Validation failures (ErrEmptyOperation,
// ErrInvalidAmount, ErrWalletNotFound, ErrInsufficientFunds) leave no trace;
// storage failures are rolled back by the database and surfaced as ErrStorage.
func (s *store) Apply(ctx context.Context, op Operation) error {
	if len(op.Mutations) == 0 {
		return ErrEmptyOperation
	}
	for _, m := range op.Mutations {
		if m.Delta.IsZero() {
			return ErrInvalidAmount
		}
	}
	if op.ID == "" {
		op.ID = uuid.NewString()
	}

	ids := lockOrder(op.Mutations)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock rows in ascending id order so two operations touching the
		// same pair of wallets can never deadlock.
		var wallets []models.Wallet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Order("id").
			Find(&wallets).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		if len(wallets) != len(ids) {
			return ErrWalletNotFound
		}

		byID := make(map[uint]*models.Wallet, len(wallets))
		for i := range wallets {
			byID[wallets[i].ID] = &wallets[i]
		}

		// Balances are checked against the locked rows, so a concurrent
		// debit that already drained the wallet is always visible here.
		for _, m := range op.Mutations {
			w := byID[m.WalletID]
			next := w.Balance.Add(m.Delta)
			if next.IsNegative() {
				return ErrInsufficientFunds
			}
			w.Balance = next
		}

		for _, id := range ids {
			if err := tx.Model(&models.Wallet{}).
				Where("id = ?", id).
				Update("balance", byID[id].Balance).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrStorage, err)
			}
		}

		entries := make([]models.TransactionEntry, 0, len(op.Mutations))
		for _, m := range op.Mutations {
			entries = append(entries, models.TransactionEntry{
				ID:          uuid.NewString(),
				WalletID:    m.WalletID,
				Amount:      m.Delta.Abs(),
				Kind:        m.Kind,
				OperationID: op.ID,
			})
		}
		if err := tx.Create(&entries).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrConflict
			}
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}

		return nil
	})
	return err
}

// HasEntry reports whether an entry for the given operation already exists on
// the wallet. Used by the deposit reconciliation path to keep retried credits
// idempotent.
func (s *store) HasEntry(ctx context.Context, operationID string, walletID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.TransactionEntry{}).
		Where("operation_id = ? AND wallet_id = ?", operationID, walletID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return count > 0, nil
}

// lockOrder returns the distinct wallet ids of the mutations in ascending
// order.
func lockOrder(mutations []Mutation) []uint {
	seen := make(map[uint]struct{}, len(mutations))
	ids := make([]uint, 0, len(mutations))
	for _, m := range mutations {
		if _, ok := seen[m.WalletID]; ok {
			continue
		}
		seen[m.WalletID] = struct{}{}
		ids = append(ids, m.WalletID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
