package repository

import (
	"time"

	"trialfinder-backend/internal/device/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository defines the interface for push token operations
type DeviceTokenRepository interface {
	SaveToken(userID, token, deviceInfo string) error
	GetTokensByUserID(userID string) ([]domain.DeviceToken, error)
	// DeleteToken removes a token regardless of owner; used when FCM rejects it
	DeleteToken(token string) error
	// DeleteUserToken removes a token owned by userID and reports whether it existed
	DeleteUserToken(userID, token string) (bool, error)
	// DeleteStaleTokens removes tokens not refreshed since before and returns the count
	DeleteStaleTokens(before time.Time) (int64, error)
}

type deviceTokenRepository struct {
	db *gorm.DB
}

// NewDeviceTokenRepository creates a new instance of deviceTokenRepository
func NewDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &deviceTokenRepository{
		db: db,
	}
}

// SaveToken saves or reassigns a token (atomic upsert on token)
func (r *deviceTokenRepository) SaveToken(userID, token, deviceInfo string) error {
	now := time.Now()
	row := &domain.DeviceToken{
		ID:         uuid.New().String(),
		UserID:     userID,
		Token:      token,
		DeviceInfo: deviceInfo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "device_info", "updated_at"}),
	}).Create(row).Error
}

func (r *deviceTokenRepository) GetTokensByUserID(userID string) ([]domain.DeviceToken, error) {
	var tokens []domain.DeviceToken
	err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *deviceTokenRepository) DeleteToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&domain.DeviceToken{}).Error
}

func (r *deviceTokenRepository) DeleteUserToken(userID, token string) (bool, error) {
	result := r.db.Where("user_id = ? AND token = ?", userID, token).Delete(&domain.DeviceToken{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *deviceTokenRepository) DeleteStaleTokens(before time.Time) (int64, error) {
	result := r.db.Where("updated_at < ?", before).Delete(&domain.DeviceToken{})
	return result.RowsAffected, result.Error
}
