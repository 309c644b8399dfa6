package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	eligdomain "trialfinder-backend/internal/eligibility/domain"
	patientdomain "trialfinder-backend/internal/patient/domain"
	"trialfinder-backend/internal/pharmacy/domain"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo mirrors the keyed create-if-absent of the Firestore repository.
type memoryRepo struct {
	mu     sync.Mutex
	byName map[string]domain.Pharmacy
}

func (r *memoryRepo) Create(_ context.Context, p *domain.Pharmacy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byName {
		if existing.OwnerUserID == p.OwnerUserID {
			return domain.ErrPharmacyAlreadyExists
		}
	}
	if _, ok := r.byName[p.NormalizedName]; ok {
		return domain.ErrPharmacyNameTaken
	}
	p.ID = p.NormalizedName
	r.byName[p.NormalizedName] = *p
	return nil
}

func (r *memoryRepo) GetByOwner(_ context.Context, owner string) (*domain.Pharmacy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byName {
		if p.OwnerUserID == owner {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) GetByNormalizedName(_ context.Context, name string) (*domain.Pharmacy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byName[name]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type studySource map[string][]patientdomain.SavedStudy

func (s studySource) ListStudiesBySponsor(_ context.Context, key string) ([]patientdomain.SavedStudy, error) {
	return s[key], nil
}

func newUsecase(studies studySource) PharmacyUsecase {
	log, _ := test.NewNullLogger()
	return NewPharmacyUsecase(&memoryRepo{byName: map[string]domain.Pharmacy{}}, studies, log)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	uc := newUsecase(nil)

	p, err := uc.Register(ctx, "owner-1", "  Acme   Pharmacy ")
	require.NoError(t, err)
	assert.Equal(t, "Acme Pharmacy", p.Name)
	assert.Equal(t, "acme pharmacy", p.NormalizedName)

	tests := []struct {
		name    string
		owner   string
		input   string
		wantErr error
	}{
		{"same name different case", "owner-2", "ACME PHARMACY", domain.ErrPharmacyNameTaken},
		{"same name extra whitespace", "owner-3", "acme\tpharmacy", domain.ErrPharmacyNameTaken},
		{"same name with accents", "owner-4", "Acmé Pharmacy", domain.ErrPharmacyNameTaken},
		{"owner already registered", "owner-1", "Other Name", domain.ErrPharmacyAlreadyExists},
		{"too short", "owner-5", "a", ErrInvalidName},
		{"punctuation only", "owner-6", "!!!", ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Register(ctx, tt.owner, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStudies(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	uc := newUsecase(studySource{
		"acme": {
			{TrialID: "NCT1", Title: "Melanoma Study", SavedAt: now.Add(-time.Hour), MatchResult: &eligdomain.MatchResult{Match: true}},
			{TrialID: "NCT2", Title: "Lung Study", SavedAt: now},
		},
	})

	_, err := uc.Studies(ctx, "owner-1", "")
	assert.ErrorIs(t, err, ErrPharmacyNotFound)

	_, err = uc.Register(ctx, "owner-1", "Acme")
	require.NoError(t, err)

	studies, err := uc.Studies(ctx, "owner-1", "")
	require.NoError(t, err)
	require.Len(t, studies, 2)
	assert.Equal(t, "NCT2", studies[0].TrialID)
	assert.True(t, studies[1].Match)

	studies, err = uc.Studies(ctx, "owner-1", "melanoma")
	require.NoError(t, err)
	require.Len(t, studies, 1)

	owner, err := uc.OwnerForSponsor(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", owner)

	owner, err = uc.OwnerForSponsor(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, owner)
}
