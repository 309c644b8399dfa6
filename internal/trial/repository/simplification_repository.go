package repository

import (
	"errors"
	"time"

	"trialfinder-backend/internal/trial/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SimplificationRepository defines the durable store for simplified trial text
type SimplificationRepository interface {
	// GetSimplification returns the stored text, or nil when absent
	GetSimplification(trialID, field string) (*domain.TrialSimplification, error)
	// GetSimplifications returns trialID -> text for one field
	GetSimplifications(trialIDs []string, field string) (map[string]string, error)
	// SaveSimplification inserts or replaces the text for a trial field
	SaveSimplification(trialID, field, text string) error
	DeleteSimplifications(trialID string) error
}

type simplificationRepository struct {
	db *gorm.DB
}

// NewSimplificationRepository creates a new instance of simplificationRepository
func NewSimplificationRepository(db *gorm.DB) SimplificationRepository {
	return &simplificationRepository{
		db: db,
	}
}

func (r *simplificationRepository) GetSimplification(trialID, field string) (*domain.TrialSimplification, error) {
	var s domain.TrialSimplification
	err := r.db.Where("trial_id = ? AND field = ?", trialID, field).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *simplificationRepository) GetSimplifications(trialIDs []string, field string) (map[string]string, error) {
	if len(trialIDs) == 0 {
		return map[string]string{}, nil
	}

	var rows []domain.TrialSimplification
	err := r.db.Where("trial_id IN ? AND field = ?", trialIDs, field).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(rows))
	for _, s := range rows {
		result[s.TrialID] = s.Text
	}
	return result, nil
}

// SaveSimplification upserts on (trial_id, field)
func (r *simplificationRepository) SaveSimplification(trialID, field, text string) error {
	now := time.Now()
	row := &domain.TrialSimplification{
		ID:        uuid.New().String(),
		TrialID:   trialID,
		Field:     field,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "trial_id"}, {Name: "field"}},
		DoUpdates: clause.AssignmentColumns([]string{"text", "updated_at"}),
	}).Create(row).Error
}

func (r *simplificationRepository) DeleteSimplifications(trialID string) error {
	return r.db.Where("trial_id = ?", trialID).Delete(&domain.TrialSimplification{}).Error
}
