// Package transfer orchestrates peer-to-peer transfers between two user
// wallets. The engine validates the request, then submits both legs as one
// ledger operation, so either the debit and the credit both commit or neither
// does.
package transfer

import (
	"context"
	"errors"
	"fmt"

	"quicksend/internal/ledger"
	"quicksend/internal/models"
	"quicksend/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	users   UserDirectory
	wallets WalletReader
	ledger  Ledger
}

// NewService creates a new transfer service instance.
func NewService(users UserDirectory, wallets WalletReader, ldg Ledger) Service {
	if users == nil {
		panic("user directory is required")
	}
	if wallets == nil {
		panic("wallet reader is required")
	}
	if ldg == nil {
		panic("ledger is required")
	}
	return &service{users: users, wallets: wallets, ledger: ldg}
}

// Transfer moves amount from the sender to the user owning recipientPhone.
// Validation happens before any mutation; the balance check is repeated by the
// ledger under a row lock, so two concurrent transfers can never both spend
// the same funds.
func (s *service) Transfer(ctx context.Context, senderID uint, recipientPhone string, amount decimal.Decimal) (*Receipt, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	senderWallet, err := s.wallets.GetByUserID(senderID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrSenderNotFound
		}
		return nil, fmt.Errorf("failed to resolve sender wallet: %w", err)
	}

	recipient, err := s.users.GetByPhone(recipientPhone)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}
	if recipient.ID == senderID {
		return nil, ErrSelfTransfer
	}

	recipientWallet, err := s.wallets.GetByUserID(recipient.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to resolve recipient wallet: %w", err)
	}

	if senderWallet.Balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	op := ledger.Operation{
		ID: uuid.NewString(),
		Mutations: []ledger.Mutation{
			{WalletID: senderWallet.ID, Delta: amount.Neg(), Kind: models.EntryKindSend},
			{WalletID: recipientWallet.ID, Delta: amount, Kind: models.EntryKindReceived},
		},
	}

	if err := s.ledger.Apply(ctx, op); err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return nil, ErrInsufficientFunds
		case errors.Is(err, ledger.ErrWalletNotFound):
			return nil, ErrRecipientNotFound
		default:
			return nil, fmt.Errorf("transfer failed: %w", err)
		}
	}

	s.wallets.InvalidateCache(ctx, senderID)
	s.wallets.InvalidateCache(ctx, recipient.ID)

	return &Receipt{
		OperationID:    op.ID,
		SenderID:       senderID,
		RecipientID:    recipient.ID,
		RecipientPhone: recipientPhone,
		Amount:         amount,
	}, nil
}
