// Package deposit credits a wallet only after the payment gateway confirms a
// charge settled. The flow is an explicit two-phase state machine: the charge
// moves through requires_action, succeeded or rejected, and only the succeeded
// transition is allowed to touch the ledger. A settled charge is recorded as a
// pending credit before the ledger commit, so a commit failure never loses
// money: Reconcile retries the credit by gateway reference, idempotently.
//
// Payouts back to the gateway are intentionally unimplemented. A future
// withdraw flow must invert the ordering — debit the ledger first (withdraw
// entry), then request the external payout — so funds are reserved before
// they leave the system.
package deposit

import (
	"context"
	"errors"
	"fmt"
	"log"

	"quicksend/internal/ledger"
	"quicksend/internal/models"
	"quicksend/internal/repositories"

	"github.com/shopspring/decimal"
)

type service struct {
	gateway Gateway
	wallets WalletReader
	ledger  Ledger
	pending PendingCredits
}

// NewService creates a new deposit service instance.
func NewService(gateway Gateway, wallets WalletReader, ldg Ledger, pending PendingCredits) Service {
	if gateway == nil {
		panic("gateway is required")
	}
	if wallets == nil {
		panic("wallet reader is required")
	}
	if ldg == nil {
		panic("ledger is required")
	}
	if pending == nil {
		panic("pending credit store is required")
	}
	return &service{gateway: gateway, wallets: wallets, ledger: ldg, pending: pending}
}

func (s *service) Deposit(ctx context.Context, userID uint, amountInCents int64, currency, paymentMethodID string) (*Result, error) {
	if amountInCents <= 0 {
		return nil, ErrInvalidAmount
	}

	wallet, err := s.wallets.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to resolve wallet: %w", err)
	}

	charge, err := s.gateway.Charge(ctx, amountInCents, currency, paymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentRejected, err)
	}

	switch charge.Status {
	case ChargeRequiresAction:
		// No ledger mutation yet. The client completes the challenge and
		// the charge settles out of band.
		return &Result{
			Status:      StatusRequiresAction,
			ActionToken: charge.ActionToken,
			Reference:   charge.Reference,
		}, nil
	case ChargeSucceeded:
		// fall through to the credit below
	default:
		return nil, ErrPaymentRejected
	}

	amount := decimal.NewFromInt(amountInCents).Div(decimal.NewFromInt(100))

	// The charge is settled from here on. Record it before touching the
	// ledger so a failed commit leaves a reconcilable trail instead of a
	// captured charge with no credit.
	if err := s.pending.Record(ctx, &models.PendingCredit{
		WalletID:  wallet.ID,
		Amount:    amount,
		Currency:  currency,
		Reference: charge.Reference,
	}); err != nil {
		log.Printf("Failed to record pending credit for charge %s: %v", charge.Reference, err)
	}

	if err := s.creditByReference(ctx, wallet.ID, amount, charge.Reference); err != nil {
		log.Printf("Ledger credit failed for settled charge %s: %v", charge.Reference, err)
		return nil, fmt.Errorf("%w: %v", ErrCreditFailed, err)
	}

	if err := s.pending.MarkCredited(ctx, charge.Reference); err != nil {
		log.Printf("Failed to mark charge %s credited: %v", charge.Reference, err)
	}
	s.wallets.InvalidateCache(ctx, userID)

	updated, err := s.wallets.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read updated balance: %w", err)
	}

	return &Result{
		Status:     StatusOK,
		NewBalance: updated.Balance,
		Reference:  charge.Reference,
	}, nil
}

// Reconcile retries the wallet credit for a recorded charge. Safe to call any
// number of times: a credit that already reached the ledger is never applied
// again.
func (s *service) Reconcile(ctx context.Context, reference string) (*Result, error) {
	credit, err := s.pending.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, repositories.ErrPendingCreditNotFound) {
			return nil, ErrUnknownReference
		}
		return nil, fmt.Errorf("failed to look up charge: %w", err)
	}

	if credit.Status != models.PendingCreditStatusCredited {
		if err := s.creditByReference(ctx, credit.WalletID, credit.Amount, reference); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCreditFailed, err)
		}
		if err := s.pending.MarkCredited(ctx, reference); err != nil {
			log.Printf("Failed to mark charge %s credited: %v", reference, err)
		}
	}

	wallet, err := s.wallets.GetByID(credit.WalletID)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet: %w", err)
	}
	s.wallets.InvalidateCache(ctx, wallet.UserID)

	return &Result{
		Status:     StatusOK,
		NewBalance: wallet.Balance,
		Reference:  reference,
	}, nil
}

// creditByReference applies the single-credit ledger operation for a settled
// charge, keyed by the gateway reference. The entry existence check plus the
// unique (operation_id, wallet_id) index make the credit exactly-once no
// matter how many callers race on the same reference.
func (s *service) creditByReference(ctx context.Context, walletID uint, amount decimal.Decimal, reference string) error {
	applied, err := s.ledger.HasEntry(ctx, reference, walletID)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	op := ledger.Operation{
		ID: reference,
		Mutations: []ledger.Mutation{
			{WalletID: walletID, Delta: amount, Kind: models.EntryKindDeposit},
		},
	}
	if err := s.ledger.Apply(ctx, op); err != nil {
		// A conflict means another reconciler committed the same credit
		// between our check and our apply.
		if errors.Is(err, ledger.ErrConflict) {
			return nil
		}
		return err
	}
	return nil
}
