package repositories

import (
	"context"
	"errors"
	"fmt"

	"quicksend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPendingCreditNotFound = errors.New("pending credit not found")

// PendingCreditRepository tracks confirmed external charges awaiting (or
// having received) their ledger credit.
type PendingCreditRepository interface {
	Record(ctx context.Context, credit *models.PendingCredit) error
	GetByReference(ctx context.Context, reference string) (*models.PendingCredit, error)
	MarkCredited(ctx context.Context, reference string) error
	ListPending(ctx context.Context, limit int) ([]models.PendingCredit, error)
}

type pendingCreditRepository struct {
	db *gorm.DB
}

func NewPendingCreditRepository(db *gorm.DB) PendingCreditRepository {
	return &pendingCreditRepository{db: db}
}

// Record stores a settled charge before its ledger credit is attempted.
// Re-recording the same gateway reference is a no-op, so a retried deposit
// call cannot produce two rows for one charge.
func (r *pendingCreditRepository) Record(ctx context.Context, credit *models.PendingCredit) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference"}},
			DoNothing: true,
		}).
		Create(credit).Error
	if err != nil {
		return fmt.Errorf("failed to record pending credit: %w", err)
	}
	return nil
}

func (r *pendingCreditRepository) GetByReference(ctx context.Context, reference string) (*models.PendingCredit, error) {
	var credit models.PendingCredit
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&credit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingCreditNotFound
		}
		return nil, fmt.Errorf("failed to get pending credit: %w", err)
	}
	return &credit, nil
}

func (r *pendingCreditRepository) MarkCredited(ctx context.Context, reference string) error {
	err := r.db.WithContext(ctx).
		Model(&models.PendingCredit{}).
		Where("reference = ?", reference).
		Update("status", models.PendingCreditStatusCredited).Error
	if err != nil {
		return fmt.Errorf("failed to mark pending credit: %w", err)
	}
	return nil
}

func (r *pendingCreditRepository) ListPending(ctx context.Context, limit int) ([]models.PendingCredit, error) {
	var credits []models.PendingCredit
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PendingCreditStatusPending).
		Order("created_at").
		Limit(limit).
		Find(&credits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending credits: %w", err)
	}
	return credits, nil
}
