package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	patientdomain "trialfinder-backend/internal/patient/domain"
	patientusecase "trialfinder-backend/internal/patient/usecase"
	"trialfinder-backend/internal/pharmacy/domain"
	"trialfinder-backend/internal/pharmacy/repository"
	"trialfinder-backend/pkg/fuzzy"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidName      = errors.New("pharmacy name must be 2 to 120 characters")
	ErrPharmacyNotFound = errors.New("pharmacy not registered")
)

// StudySource lists saved studies by sponsor key
type StudySource interface {
	ListStudiesBySponsor(ctx context.Context, sponsorKey string) ([]patientdomain.SavedStudy, error)
}

type PharmacyUsecase interface {
	Register(ctx context.Context, ownerUserID, name string) (*domain.Pharmacy, error)
	Get(ctx context.Context, ownerUserID string) (*domain.Pharmacy, error)
	// Studies lists saved studies whose lead sponsor is the caller's pharmacy
	Studies(ctx context.Context, ownerUserID, query string) ([]domain.SponsoredStudy, error)
	// OwnerForSponsor returns the owner of the pharmacy registered under
	// sponsorKey, or "" when none is
	OwnerForSponsor(ctx context.Context, sponsorKey string) (string, error)
}

type pharmacyUsecase struct {
	repo    repository.PharmacyRepository
	studies StudySource
	log     logrus.FieldLogger
}

func NewPharmacyUsecase(repo repository.PharmacyRepository, studies StudySource, log logrus.FieldLogger) PharmacyUsecase {
	return &pharmacyUsecase{
		repo:    repo,
		studies: studies,
		log:     log.WithField("component", "pharmacy"),
	}
}

func (u *pharmacyUsecase) Register(ctx context.Context, ownerUserID, name string) (*domain.Pharmacy, error) {
	name = strings.Join(strings.Fields(name), " ")
	normalized := fuzzy.NormalizeName(name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 120 || normalized == "" {
		return nil, ErrInvalidName
	}

	p := &domain.Pharmacy{
		OwnerUserID:    ownerUserID,
		Name:           name,
		NormalizedName: normalized,
		CreatedAt:      time.Now().UTC(),
	}
	if err := u.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	u.log.WithFields(logrus.Fields{"owner": ownerUserID, "name": normalized}).Info("pharmacy registered")
	return p, nil
}

func (u *pharmacyUsecase) Get(ctx context.Context, ownerUserID string) (*domain.Pharmacy, error) {
	p, err := u.repo.GetByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPharmacyNotFound
	}
	return p, nil
}

func (u *pharmacyUsecase) Studies(ctx context.Context, ownerUserID, query string) ([]domain.SponsoredStudy, error) {
	p, err := u.Get(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	saved, err := u.studies.ListStudiesBySponsor(ctx, p.NormalizedName)
	if err != nil {
		return nil, err
	}
	patientusecase.SortNewestFirst(saved)

	out := make([]domain.SponsoredStudy, 0, len(saved))
	for _, s := range saved {
		if !fuzzy.MatchStudy(query, s.Title, "") {
			continue
		}
		out = append(out, domain.SponsoredStudy{
			TrialID:     s.TrialID,
			Title:       s.Title,
			LeadSponsor: s.LeadSponsor,
			Match:       s.MatchResult != nil && s.MatchResult.Match,
			SavedAt:     s.SavedAt,
		})
	}
	return out, nil
}

func (u *pharmacyUsecase) OwnerForSponsor(ctx context.Context, sponsorKey string) (string, error) {
	p, err := u.repo.GetByNormalizedName(ctx, sponsorKey)
	if err != nil || p == nil {
		return "", err
	}
	return p.OwnerUserID, nil
}
