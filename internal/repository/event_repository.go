package repository

import (
	"time"

	"github.com/guildhall/guildhall-backend/internal/models"
	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) WithTx(tx *gorm.DB) *EventRepository {
	return &EventRepository{db: tx}
}

func (r *EventRepository) Create(event *models.Event) (*models.Event, error) {
	if err := r.db.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) GetByID(id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) Update(event *models.Event) error {
	return r.db.Save(event).Error
}

func (r *EventRepository) Delete(id uint) error {
	return r.db.Delete(&models.Event{}, id).Error
}

// ListUpcoming returns future events ascending by start time, optionally
// filtered by category.
func (r *EventRepository) ListUpcoming(after time.Time, category models.Category, limit int) ([]models.Event, error) {
	query := r.db.Where("starts_at > ?", after)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var events []models.Event
	err := query.Order("starts_at ASC").Limit(limit).Find(&events).Error
	return events, err
}

// ListBetween returns events scheduled inside [from, to).
func (r *EventRepository) ListBetween(from, to time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Where("starts_at >= ? AND starts_at < ?", from, to).Find(&events).Error
	return events, err
}

func (r *EventRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).Count(&count).Error
	return count, err
}

func (r *EventRepository) CountUpcoming(after time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).Where("starts_at > ?", after).Count(&count).Error
	return count, err
}
