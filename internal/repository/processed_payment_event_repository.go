package repository

import (
	"github.com/guildhall/guildhall-backend/internal/models"
	"gorm.io/gorm"
)

// ProcessedPaymentEventRepository is the dedup ledger for webhook
// deliveries, keyed by the notification's Stripe id.
type ProcessedPaymentEventRepository struct {
	db *gorm.DB
}

func NewProcessedPaymentEventRepository(db *gorm.DB) *ProcessedPaymentEventRepository {
	return &ProcessedPaymentEventRepository{db: db}
}

func (r *ProcessedPaymentEventRepository) WithTx(tx *gorm.DB) *ProcessedPaymentEventRepository {
	return &ProcessedPaymentEventRepository{db: tx}
}

func (r *ProcessedPaymentEventRepository) Record(event *models.ProcessedPaymentEvent) error {
	return r.db.Create(event).Error
}

func (r *ProcessedPaymentEventRepository) Seen(stripeID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.ProcessedPaymentEvent{}).
		Where("stripe_id = ?", stripeID).
		Count(&count).Error
	return count > 0, err
}
