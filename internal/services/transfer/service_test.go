package transfer

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

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetByPhone(phone string) (*models.User, error) {
	args := m.Called(phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
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

func userWithID(id uint, phone string) *models.User {
	u := &models.User{Phone: phone}
	u.ID = id
	return u
}

func walletFor(id, userID uint, balance int64) *models.Wallet {
	return &models.Wallet{ID: id, UserID: userID, Balance: decimal.NewFromInt(balance)}
}

func TestTransfer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		setup   func(*MockUserDirectory, *MockWalletReader, *MockLedger)
		wantErr error
	}{
		{
			name:    "zero amount",
			amount:  decimal.Zero,
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			amount:  decimal.NewFromInt(-10),
			wantErr: ErrInvalidAmount,
		},
		{
			name:   "sender wallet missing",
			amount: decimal.NewFromInt(10),
			setup: func(users *MockUserDirectory, wallets *MockWalletReader, _ *MockLedger) {
				wallets.On("GetByUserID", uint(1)).Return(nil, repositories.ErrWalletNotFound)
			},
			wantErr: ErrSenderNotFound,
		},
		{
			name:   "recipient missing",
			amount: decimal.NewFromInt(10),
			setup: func(users *MockUserDirectory, wallets *MockWalletReader, _ *MockLedger) {
				wallets.On("GetByUserID", uint(1)).Return(walletFor(11, 1, 100), nil)
				users.On("GetByPhone", "+15550002222").Return(nil, repositories.ErrUserNotFound)
			},
			wantErr: ErrRecipientNotFound,
		},
		{
			name:   "self transfer",
			amount: decimal.NewFromInt(10),
			setup: func(users *MockUserDirectory, wallets *MockWalletReader, _ *MockLedger) {
				wallets.On("GetByUserID", uint(1)).Return(walletFor(11, 1, 100), nil)
				users.On("GetByPhone", "+15550002222").Return(userWithID(1, "+15550002222"), nil)
			},
			wantErr: ErrSelfTransfer,
		},
		{
			name:   "insufficient balance rejected before the ledger",
			amount: decimal.NewFromInt(50),
			setup: func(users *MockUserDirectory, wallets *MockWalletReader, _ *MockLedger) {
				wallets.On("GetByUserID", uint(1)).Return(walletFor(11, 1, 10), nil)
				users.On("GetByPhone", "+15550002222").Return(userWithID(2, "+15550002222"), nil)
				wallets.On("GetByUserID", uint(2)).Return(walletFor(22, 2, 50), nil)
			},
			wantErr: ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserDirectory)
			wallets := new(MockWalletReader)
			ldg := new(MockLedger)
			if tt.setup != nil {
				tt.setup(users, wallets, ldg)
			}

			svc := NewService(users, wallets, ldg)
			receipt, err := svc.Transfer(context.Background(), 1, "+15550002222", tt.amount)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, receipt)
			// Nothing must reach the ledger on a validation failure.
			ldg.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
			users.AssertExpectations(t)
			wallets.AssertExpectations(t)
		})
	}
}

func TestTransfer_Success(t *testing.T) {
	users := new(MockUserDirectory)
	wallets := new(MockWalletReader)
	ldg := new(MockLedger)

	wallets.On("GetByUserID", uint(1)).Return(walletFor(11, 1, 100), nil)
	users.On("GetByPhone", "+15550002222").Return(userWithID(2, "+15550002222"), nil)
	wallets.On("GetByUserID", uint(2)).Return(walletFor(22, 2, 50), nil)
	ldg.On("Apply", mock.Anything, mock.Anything).Return(nil)
	wallets.On("InvalidateCache", mock.Anything, uint(1)).Return()
	wallets.On("InvalidateCache", mock.Anything, uint(2)).Return()

	svc := NewService(users, wallets, ldg)
	amount := decimal.NewFromInt(30)
	receipt, err := svc.Transfer(context.Background(), 1, "+15550002222", amount)

	assert.NoError(t, err)
	assert.NotNil(t, receipt)
	assert.Equal(t, uint(1), receipt.SenderID)
	assert.Equal(t, uint(2), receipt.RecipientID)
	assert.True(t, receipt.Amount.Equal(amount))
	assert.NotEmpty(t, receipt.OperationID)

	// One atomic operation with exactly two legs: debit on the sender's
	// wallet, credit on the recipient's, identical magnitudes.
	op := ldg.lastOp
	assert.Equal(t, receipt.OperationID, op.ID)
	assert.Len(t, op.Mutations, 2)

	debit, credit := op.Mutations[0], op.Mutations[1]
	assert.Equal(t, uint(11), debit.WalletID)
	assert.Equal(t, models.EntryKindSend, debit.Kind)
	assert.True(t, debit.Delta.Equal(amount.Neg()))

	assert.Equal(t, uint(22), credit.WalletID)
	assert.Equal(t, models.EntryKindReceived, credit.Kind)
	assert.True(t, credit.Delta.Equal(amount))

	assert.True(t, debit.Delta.Add(credit.Delta).IsZero(), "transfer must conserve total balance")

	users.AssertExpectations(t)
	wallets.AssertExpectations(t)
	ldg.AssertExpectations(t)
}

func TestTransfer_LedgerRejections(t *testing.T) {
	tests := []struct {
		name      string
		ledgerErr error
		wantErr   error
	}{
		{
			name:      "concurrent debit drained the balance",
			ledgerErr: ledger.ErrInsufficientFunds,
			wantErr:   ErrInsufficientFunds,
		},
		{
			name:      "recipient wallet vanished",
			ledgerErr: ledger.ErrWalletNotFound,
			wantErr:   ErrRecipientNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserDirectory)
			wallets := new(MockWalletReader)
			ldg := new(MockLedger)

			wallets.On("GetByUserID", uint(1)).Return(walletFor(11, 1, 100), nil)
			users.On("GetByPhone", "+15550002222").Return(userWithID(2, "+15550002222"), nil)
			wallets.On("GetByUserID", uint(2)).Return(walletFor(22, 2, 50), nil)
			ldg.On("Apply", mock.Anything, mock.Anything).Return(tt.ledgerErr)

			svc := NewService(users, wallets, ldg)
			receipt, err := svc.Transfer(context.Background(), 1, "+15550002222", decimal.NewFromInt(30))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, receipt)
			wallets.AssertNotCalled(t, "InvalidateCache", mock.Anything, mock.Anything)
		})
	}
}
