package repository

import (
	"time"

	"github.com/guildhall/guildhall-backend/internal/models"
	"gorm.io/gorm"
)

type ParticipationRepository struct {
	db *gorm.DB
}

func NewParticipationRepository(db *gorm.DB) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

func (r *ParticipationRepository) WithTx(tx *gorm.DB) *ParticipationRepository {
	return &ParticipationRepository{db: tx}
}

func (r *ParticipationRepository) Create(p *models.Participation) error {
	return r.db.Create(p).Error
}

func (r *ParticipationRepository) Delete(p *models.Participation) error {
	return r.db.Delete(p).Error
}

func (r *ParticipationRepository) GetByUserAndEvent(userID, eventID uint) (*models.Participation, error) {
	var p models.Participation
	err := r.db.Where("user_id = ? AND event_id = ?", userID, eventID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ParticipationRepository) Exists(userID, eventID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Participation{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	return count > 0, err
}

func (r *ParticipationRepository) CountForEvent(eventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Participation{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

func (r *ParticipationRepository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Participation{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *ParticipationRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.Participation{}).Count(&count).Error
	return count, err
}

func (r *ParticipationRepository) ListForEvent(eventID uint) ([]models.Participation, error) {
	var participations []models.Participation
	err := r.db.Where("event_id = ?", eventID).Find(&participations).Error
	return participations, err
}

func (r *ParticipationRepository) ListForUser(userID uint) ([]models.Participation, error) {
	var participations []models.Participation
	err := r.db.Where("user_id = ?", userID).Order("joined_at DESC").Find(&participations).Error
	return participations, err
}

// HasFutureForUser reports whether the user holds a participation in any
// event that has not started yet.
func (r *ParticipationRepository) HasFutureForUser(userID uint, now time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Participation{}).
		Joins("JOIN events ON events.id = participations.event_id").
		Where("participations.user_id = ? AND events.starts_at > ?", userID, now).
		Count(&count).Error
	return count > 0, err
}

func (r *ParticipationRepository) DeleteAllForUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Participation{}).Error
}
