package deposit

import (
	"context"
	"testing"

	"quicksend/internal/ledger"
	"quicksend/internal/models"
	"quicksend/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Charge(ctx context.Context, amountInCents int64, currency, paymentMethodID string) (*ChargeResult, error) {
	args := m.Called(ctx, amountInCents, currency, paymentMethodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChargeResult), args.Error(1)
}

type MockWalletReader struct {
	mock.Mock
}

func (m *MockWalletReader) GetByUserID(userID uint) (*models.Wallet, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletReader) GetByID(id uint) (*models.Wallet, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletReader) InvalidateCache(ctx context.Context, userID uint) {
	m.Called(ctx, userID)
}

type MockLedger struct {
	mock.Mock
	lastOp ledger.Operation
}

func (m *MockLedger) Apply(ctx context.Context, op ledger.Operation) error {
	m.lastOp = op
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *MockLedger) HasEntry(ctx context.Context, operationID string, walletID uint) (bool, error) {
	args := m.Called(ctx, operationID, walletID)
	return args.Bool(0), args.Error(1)
}

type MockPendingCredits struct {
	mock.Mock
}

func (m *MockPendingCredits) Record(ctx context.Context, credit *models.PendingCredit) error {
	args := m.Called(ctx, credit)
	return args.Error(0)
}

func (m *MockPendingCredits) GetByReference(ctx context.Context, reference string) (*models.PendingCredit, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingCredit), args.Error(1)
}

func (m *MockPendingCredits) MarkCredited(ctx context.Context, reference string) error {
	args := m.Called(ctx, reference)
	return args.Error(0)
}

func newMocks() (*MockGateway, *MockWalletReader, *MockLedger, *MockPendingCredits) {
	return new(MockGateway), new(MockWalletReader), new(MockLedger), new(MockPendingCredits)
}

func TestDeposit_InvalidAmount(t *testing.T) {
	gateway, wallets, ldg, pending := newMocks()
	svc := NewService(gateway, wallets, ldg, pending)

	for _, cents := range []int64{0, -500} {
		result, err := svc.Deposit(context.Background(), 1, cents, "usd", "pm_card_visa")
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Nil(t, result)
	}
	gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeposit_RequiresAction(t *testing.T) {
	gateway, wallets, ldg, pending := newMocks()

	wallets.On("GetByUserID", uint(3)).Return(&models.Wallet{ID: 33, UserID: 3, Balance: decimal.Zero}, nil)
	gateway.On("Charge", mock.Anything, int64(500), "usd", "pm_card_threeDSecure").
		Return(&ChargeResult{
			Status:      ChargeRequiresAction,
			Reference:   "pi_123",
			ActionToken: "pi_123_secret",
		}, nil)

	svc := NewService(gateway, wallets, ldg, pending)
	result, err := svc.Deposit(context.Background(), 3, 500, "usd", "pm_card_threeDSecure")

	assert.NoError(t, err)
	assert.Equal(t, StatusRequiresAction, result.Status)
	assert.Equal(t, "pi_123_secret", result.ActionToken)

	// A charge awaiting confirmation must not move any money.
	ldg.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	pending.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestDeposit_Rejected(t *testing.T) {
	gateway, wallets, ldg, pending := newMocks()

	wallets.On("GetByUserID", uint(3)).Return(&models.Wallet{ID: 33, UserID: 3, Balance: decimal.Zero}, nil)
	gateway.On("Charge", mock.Anything, int64(500), "usd", "pm_card_declined").
		Return(&ChargeResult{Status: ChargeRejected}, nil)

	svc := NewService(gateway, wallets, ldg, pending)
	result, err := svc.Deposit(context.Background(), 3, 500, "usd", "pm_card_declined")

	assert.ErrorIs(t, err, ErrPaymentRejected)
	assert.Nil(t, result)
	ldg.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

func TestDeposit_Succeeded(t *testing.T) {
	gateway, wallets, ldg, pending := newMocks()

	five := decimal.NewFromInt(5)
	wallets.On("GetByUserID", uint(3)).
		Return(&models.Wallet{ID: 33, UserID: 3, Balance: decimal.Zero}, nil).Once()
	gateway.On("Charge", mock.Anything, int64(500), "usd", "pm_card_visa").
		Return(&ChargeResult{Status: ChargeSucceeded, Reference: "pi_500"}, nil)
	pending.On("Record", mock.Anything, mock.MatchedBy(func(pc *models.PendingCredit) bool {
		return pc.WalletID == 33 && pc.Reference == "pi_500" && pc.Amount.Equal(five)
	})).Return(nil)
	ldg.On("HasEntry", mock.Anything, "pi_500", uint(33)).Return(false, nil)
	ldg.On("Apply", mock.Anything, mock.Anything).Return(nil)
	pending.On("MarkCredited", mock.Anything, "pi_500").Return(nil)
	wallets.On("InvalidateCache", mock.Anything, uint(3)).Return()
	wallets.On("GetByUserID", uint(3)).
		Return(&models.Wallet{ID: 33, UserID: 3, Balance: five}, nil).Once()

	svc := NewService(gateway, wallets, ldg, pending)
	result, err := svc.Deposit(context.Background(), 3, 500, "usd", "pm_card_visa")

	assert.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)
	assert.True(t, result.NewBalance.Equal(five), "500 cents must credit 5.00")
	assert.Equal(t, "pi_500", result.Reference)

	// Exactly one credit mutation keyed by the gateway reference.
	op := ldg.lastOp
	assert.Equal(t, "pi_500", op.ID)
	assert.Len(t, op.Mutations, 1)
	assert.Equal(t, uint(33), op.Mutations[0].WalletID)
	assert.Equal(t, models.EntryKindDeposit, op.Mutations[0].Kind)
	assert.True(t, op.Mutations[0].Delta.Equal(five))

	gateway.AssertExpectations(t)
	wallets.AssertExpectations(t)
	ldg.AssertExpectations(t)
	pending.AssertExpectations(t)
}

func TestDeposit_LedgerFailureLeavesReconcilableTrail(t *testing.T) {
	gateway, wallets, ldg, pending := newMocks()

	wallets.On("GetByUserID", uint(3)).Return(&models.Wallet{ID: 33, UserID: 3, Balance: decimal.Zero}, nil)
	gateway.On("Charge", mock.Anything, int64(500), "usd", "pm_card_visa").
		Return(&ChargeResult{Status: ChargeSucceeded, Reference: "pi_500"}, nil)
	pending.On("Record", mock.Anything, mock.Anything).Return(nil)
	ldg.On("HasEntry", mock.Anything, "pi_500", uint(33)).Return(false, nil)
	ldg.On("Apply", mock.Anything, mock.Anything).Return(ledger.ErrStorage)

	svc := NewService(gateway, wallets, ldg, pending)
	result, err := svc.Deposit(context.Background(), 3, 500, "usd", "pm_card_visa")

	assert.ErrorIs(t, err, ErrCreditFailed)
	assert.Nil(t, result)
	// The settled charge was recorded before the failed commit, so
	// reconciliation can credit it later.
	pending.AssertCalled(t, "Record", mock.Anything, mock.Anything)
	pending.AssertNotCalled(t, "MarkCredited", mock.Anything, mock.Anything)
}

func TestReconcile_CreditsPendingCharge(t *testing.T) {
	gateway, wallets, ldg, pending := newMocks()

	five := decimal.NewFromInt(5)
	pending.On("GetByReference", mock.Anything, "pi_500").Return(&models.PendingCredit{
		WalletID:  33,
		Amount:    five,
		Currency:  "usd",
		Reference: "pi_500",
		Status:    models.PendingCreditStatusPending,
	}, nil)
	ldg.On("HasEntry", mock.Anything, "pi_500", uint(33)).Return(false, nil)
	ldg.On("Apply", mock.Anything, mock.Anything).Return(nil)
	pending.On("MarkCredited", mock.Anything, "pi_500").Return(nil)
	wallets.On("GetByID", uint(33)).Return(&models.Wallet{ID: 33, UserID: 3, Balance: five}, nil)
	wallets.On("InvalidateCache", mock.Anything, uint(3)).Return()

	svc := NewService(gateway, wallets, ldg, pending)
	result, err := svc.Reconcile(context.Background(), "pi_500")

	assert.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)
	assert.True(t, result.NewBalance.Equal(five))
	ldg.AssertExpectations(t)
	pending.AssertExpectations(t)
}

func TestReconcile_Idempotent(t *testing.T) {
	gateway, wallets, ldg, pending := newMocks()

	five := decimal.NewFromInt(5)
	pending.On("GetByReference", mock.Anything, "pi_500").Return(&models.PendingCredit{
		WalletID:  33,
		Amount:    five,
		Reference: "pi_500",
		Status:    models.PendingCreditStatusPending,
	}, nil)
	// The credit already reached the ledger on a previous attempt.
	ldg.On("HasEntry", mock.Anything, "pi_500", uint(33)).Return(true, nil)
	pending.On("MarkCredited", mock.Anything, "pi_500").Return(nil)
	wallets.On("GetByID", uint(33)).Return(&models.Wallet{ID: 33, UserID: 3, Balance: five}, nil)
	wallets.On("InvalidateCache", mock.Anything, uint(3)).Return()

	svc := NewService(gateway, wallets, ldg, pending)
	result, err := svc.Reconcile(context.Background(), "pi_500")

	assert.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)
	// No second credit was ever applied.
	ldg.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

func TestReconcile_ConflictMeansAlreadyApplied(t *testing.T) {
	gateway, wallets, ldg, pending := newMocks()

	five := decimal.NewFromInt(5)
	pending.On("GetByReference", mock.Anything, "pi_500").Return(&models.PendingCredit{
		WalletID:  33,
		Amount:    five,
		Reference: "pi_500",
		Status:    models.PendingCreditStatusPending,
	}, nil)
	ldg.On("HasEntry", mock.Anything, "pi_500", uint(33)).Return(false, nil)
	// A racing reconciler committed between the check and the apply.
	ldg.On("Apply", mock.Anything, mock.Anything).Return(ledger.ErrConflict)
	pending.On("MarkCredited", mock.Anything, "pi_500").Return(nil)
	wallets.On("GetByID", uint(33)).Return(&models.Wallet{ID: 33, UserID: 3, Balance: five}, nil)
	wallets.On("InvalidateCache", mock.Anything, uint(3)).Return()

	svc := NewService(gateway, wallets, ldg, pending)
	result, err := svc.Reconcile(context.Background(), "pi_500")

	assert.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)
}

func TestReconcile_UnknownReference(t *testing.T) {
	gateway, wallets, ldg, pending := newMocks()

	pending.On("GetByReference", mock.Anything, "pi_missing").
		Return(nil, repositories.ErrPendingCreditNotFound)

	svc := NewService(gateway, wallets, ldg, pending)
	result, err := svc.Reconcile(context.Background(), "pi_missing")

	assert.ErrorIs(t, err, ErrUnknownReference)
	assert.Nil(t, result)
}
