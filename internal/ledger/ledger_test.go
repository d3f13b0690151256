package ledger

import (
	"context"
	"testing"

	"quicksend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApply_Validation(t *testing.T) {
	// Validation failures must return before any database work, so a store
	// without a database is enough to exercise them.
	s := &store{}

	t.Run("empty operation", func(t *testing.T) {
		err := s.Apply(context.Background(), Operation{})
		assert.ErrorIs(t, err, ErrEmptyOperation)
	})

	t.Run("zero delta", func(t *testing.T) {
		op := Operation{
			Mutations: []Mutation{
				{WalletID: 1, Delta: decimal.Zero, Kind: models.EntryKindDeposit},
			},
		}
		err := s.Apply(context.Background(), op)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("zero delta anywhere in the batch", func(t *testing.T) {
		op := Operation{
			Mutations: []Mutation{
				{WalletID: 1, Delta: decimal.NewFromInt(-30), Kind: models.EntryKindSend},
				{WalletID: 2, Delta: decimal.Zero, Kind: models.EntryKindReceived},
			},
		}
		err := s.Apply(context.Background(), op)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestLockOrder(t *testing.T) {
	tests := []struct {
		name      string
		mutations []Mutation
		want      []uint
	}{
		{
			name: "two wallets out of order",
			mutations: []Mutation{
				{WalletID: 7, Delta: decimal.NewFromInt(-30)},
				{WalletID: 2, Delta: decimal.NewFromInt(30)},
			},
			want: []uint{2, 7},
		},
		{
			name: "duplicate wallet collapses to one lock",
			mutations: []Mutation{
				{WalletID: 5, Delta: decimal.NewFromInt(10)},
				{WalletID: 5, Delta: decimal.NewFromInt(20)},
			},
			want: []uint{5},
		},
		{
			name: "single wallet",
			mutations: []Mutation{
				{WalletID: 3, Delta: decimal.NewFromInt(5)},
			},
			want: []uint{3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lockOrder(tt.mutations))
		})
	}
}
