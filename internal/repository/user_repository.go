package repository

import (
	"github.com/guildhall/guildhall-backend/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByNickname(nickname string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("nickname = ?", nickname).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByVerifyToken(token string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("verify_token = ?", token).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) NicknameExists(nickname string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("nickname = ?", nickname).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// Leaderboard lists active users by XP descending, optionally filtered by
// role.
func (r *UserRepository) Leaderboard(role models.Role, limit int) ([]models.User, error) {
	query := r.db.Where("active = ?", true)
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	err := query.Order("xp DESC").Limit(limit).Find(&users).Error
	return users, err
}

func (r *UserRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("active = ?", true).Count(&count).Error
	return count, err
}

func (r *UserRepository) CountVerified() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("active = ? AND email_verified = ?", true, true).
		Count(&count).Error
	return count, err
}

func (r *UserRepository) CountByRole() (map[models.Role]int64, error) {
	type roleCount struct {
		Role  models.Role
		Count int64
	}

	var rows []roleCount
	err := r.db.Model(&models.User{}).
		Select("role, count(id) as count").
		Where("active = ?", true).
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}
