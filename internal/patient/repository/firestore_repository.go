package repository

import (
	"context"
	"fmt"

	"trialfinder-backend/internal/patient/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	profilesCollection     = "profiles"
	savedStudiesCollection = "savedStudies"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a PatientRepository backed by Firestore
func NewFirestoreRepository(client *firestore.Client) PatientRepository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) GetProfile(ctx context.Context, userID string) (*domain.PatientProfile, error) {
	snap, err := r.client.Collection(profilesCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profile domain.PatientProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

func (r *firestoreRepository) SaveProfile(ctx context.Context, profile *domain.PatientProfile) error {
	_, err := r.client.Collection(profilesCollection).Doc(profile.UserID).Set(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *firestoreRepository) SaveStudy(ctx context.Context, study *domain.SavedStudy) error {
	_, err := r.client.Collection(savedStudiesCollection).Doc(study.ID).Set(ctx, study)
	if err != nil {
		return fmt.Errorf("failed to save study: %w", err)
	}
	return nil
}

func (r *firestoreRepository) GetStudy(ctx context.Context, userID, trialID string) (*domain.SavedStudy, error) {
	snap, err := r.client.Collection(savedStudiesCollection).Doc(domain.SavedStudyID(userID, trialID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get saved study: %w", err)
	}

	var study domain.SavedStudy
	if err := snap.DataTo(&study); err != nil {
		return nil, fmt.Errorf("failed to decode saved study: %w", err)
	}
	return &study, nil
}

func (r *firestoreRepository) ListStudies(ctx context.Context, userID string) ([]domain.SavedStudy, error) {
	return r.query(ctx, r.client.Collection(savedStudiesCollection).Where("userId", "==", userID))
}

func (r *firestoreRepository) ListStudiesBySponsor(ctx context.Context, sponsorKey string) ([]domain.SavedStudy, error) {
	return r.query(ctx, r.client.Collection(savedStudiesCollection).Where("sponsorKey", "==", sponsorKey))
}

// query runs q without ordering; sorting happens in the usecase so no
// composite index is needed.
func (r *firestoreRepository) query(ctx context.Context, q firestore.Query) ([]domain.SavedStudy, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list saved studies: %w", err)
	}

	studies := make([]domain.SavedStudy, 0, len(snaps))
	for _, snap := range snaps {
		var s domain.SavedStudy
		if err := snap.DataTo(&s); err != nil {
			return nil, fmt.Errorf("failed to decode saved study %s: %w", snap.Ref.ID, err)
		}
		studies = append(studies, s)
	}
	return studies, nil
}

func (r *firestoreRepository) DeleteStudy(ctx context.Context, userID, trialID string) (bool, error) {
	_, err := r.client.Collection(savedStudiesCollection).Doc(domain.SavedStudyID(userID, trialID)).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete saved study: %w", err)
	}
	return true, nil
}
