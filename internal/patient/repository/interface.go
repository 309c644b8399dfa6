package repository

import (
	"context"

	"trialfinder-backend/internal/patient/domain"
)

// PatientRepository defines the document store for profiles and saved studies
type PatientRepository interface {
	// GetProfile returns nil when the user has no profile
	GetProfile(ctx context.Context, userID string) (*domain.PatientProfile, error)
	SaveProfile(ctx context.Context, profile *domain.PatientProfile) error

	// SaveStudy creates or overwrites the study keyed by SavedStudyID
	SaveStudy(ctx context.Context, study *domain.SavedStudy) error
	// GetStudy returns nil when the study is not saved
	GetStudy(ctx context.Context, userID, trialID string) (*domain.SavedStudy, error)
	ListStudies(ctx context.Context, userID string) ([]domain.SavedStudy, error)
	ListStudiesBySponsor(ctx context.Context, sponsorKey string) ([]domain.SavedStudy, error)
	// DeleteStudy reports whether a record was removed
	DeleteStudy(ctx context.Context, userID, trialID string) (bool, error)
}
