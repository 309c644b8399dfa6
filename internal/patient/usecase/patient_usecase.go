package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	eligdomain "trialfinder-backend/internal/eligibility/domain"
	"trialfinder-backend/internal/notification"
	"trialfinder-backend/internal/patient/domain"
	"trialfinder-backend/internal/patient/repository"
	"trialfinder-backend/pkg/fuzzy"

	"github.com/sirupsen/logrus"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrStudyNotFound   = errors.New("saved study not found")
	ErrTrialIDRequired = errors.New("trialId must be an NCT number such as NCT01234567")
	ErrAnswerMismatch  = errors.New("answers must match questions one to one")
)

var nctIDPattern = regexp.MustCompile(`^NCT\d{8}$`)

// normalizeTrialID uppercases a registry id and reports whether it is well formed.
// Ids become part of Firestore document ids.
func normalizeTrialID(id string) (string, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	return id, nctIDPattern.MatchString(id)
}

// Publisher delivers study events to the notification pipeline
type Publisher interface {
	Publish(ctx context.Context, event notification.StudySavedEvent) error
}

// SaveStudyInput is what a patient submits when saving a study
type SaveStudyInput struct {
	TrialID             string
	Title               string
	LeadSponsor         string
	EligibilityCriteria string
	Questions           []eligdomain.EligibilityQuestion
	Answers             []string
	MatchResult         *eligdomain.MatchResult
}

type PatientUsecase interface {
	GetProfile(ctx context.Context, userID string) (*domain.PatientProfile, error)
	UpsertProfile(ctx context.Context, userID string, profile domain.PatientProfile) (*domain.PatientProfile, error)

	SaveStudy(ctx context.Context, userID string, in SaveStudyInput) (*domain.SavedStudy, error)
	// ListStudies returns the user's saved studies newest first, optionally
	// filtered by a typo-tolerant title/sponsor query
	ListStudies(ctx context.Context, userID, query string) ([]domain.SavedStudy, error)
	GetStudy(ctx context.Context, userID, trialID string) (*domain.SavedStudy, error)
	DeleteStudy(ctx context.Context, userID, trialID string) error
}

type patientUsecase struct {
	repo      repository.PatientRepository
	publisher Publisher
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewPatientUsecase creates a new instance of patientUsecase. publisher may be nil.
func NewPatientUsecase(repo repository.PatientRepository, publisher Publisher, log logrus.FieldLogger) PatientUsecase {
	return &patientUsecase{
		repo:      repo,
		publisher: publisher,
		log:       log.WithField("component", "patient"),
		now:       time.Now,
	}
}

func (u *patientUsecase) GetProfile(ctx context.Context, userID string) (*domain.PatientProfile, error) {
	profile, err := u.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (u *patientUsecase) UpsertProfile(ctx context.Context, userID string, profile domain.PatientProfile) (*domain.PatientProfile, error) {
	if profile.Age != nil && (*profile.Age < 0 || *profile.Age > 130) {
		return nil, fmt.Errorf("%w: age must be between 0 and 130", ErrInvalidProfile)
	}

	profile.UserID = userID
	profile.CancerType = strings.TrimSpace(profile.CancerType)
	profile.Stage = strings.TrimSpace(profile.Stage)
	profile.TreatmentHistory = strings.TrimSpace(profile.TreatmentHistory)
	profile.Gender = strings.TrimSpace(profile.Gender)
	profile.Location = strings.TrimSpace(profile.Location)
	profile.UpdatedAt = u.now().UTC()

	if err := u.repo.SaveProfile(ctx, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (u *patientUsecase) SaveStudy(ctx context.Context, userID string, in SaveStudyInput) (*domain.SavedStudy, error) {
	trialID, ok := normalizeTrialID(in.TrialID)
	if !ok {
		return nil, ErrTrialIDRequired
	}
	if len(in.Answers) > 0 && len(in.Answers) != len(in.Questions) {
		return nil, ErrAnswerMismatch
	}

	questions := slices.Clone(in.Questions)
	for i := range questions {
		if i < len(in.Answers) {
			questions[i].Answer = in.Answers[i]
			questions[i].Answered = strings.TrimSpace(in.Answers[i]) != ""
		}
	}

	study := &domain.SavedStudy{
		ID:                  domain.SavedStudyID(userID, trialID),
		UserID:              userID,
		TrialID:             trialID,
		Title:               strings.TrimSpace(in.Title),
		LeadSponsor:         strings.TrimSpace(in.LeadSponsor),
		SponsorKey:          fuzzy.NormalizeName(in.LeadSponsor),
		EligibilityCriteria: in.EligibilityCriteria,
		Questions:           questions,
		Answers:             in.Answers,
		MatchResult:         in.MatchResult,
		SavedAt:             u.now().UTC(),
	}
	if err := u.repo.SaveStudy(ctx, study); err != nil {
		return nil, err
	}

	if u.publisher != nil && study.MatchResult != nil && study.MatchResult.Match && study.SponsorKey != "" {
		err := u.publisher.Publish(ctx, notification.StudySavedEvent{
			Type:       notification.EventStudySaved,
			TrialID:    study.TrialID,
			Title:      study.Title,
			SponsorKey: study.SponsorKey,
			SavedAt:    study.SavedAt,
		})
		if err != nil {
			// The save already succeeded; the notification is best effort.
			u.log.WithError(err).WithField("trial_id", trialID).Warn("failed to publish study.saved")
		}
	}

	return study, nil
}

func (u *patientUsecase) ListStudies(ctx context.Context, userID, query string) ([]domain.SavedStudy, error) {
	studies, err := u.repo.ListStudies(ctx, userID)
	if err != nil {
		return nil, err
	}

	filtered := studies[:0]
	for _, s := range studies {
		if fuzzy.MatchStudy(query, s.Title, s.LeadSponsor) {
			filtered = append(filtered, s)
		}
	}
	SortNewestFirst(filtered)
	return filtered, nil
}

func (u *patientUsecase) GetStudy(ctx context.Context, userID, trialID string) (*domain.SavedStudy, error) {
	trialID, ok := normalizeTrialID(trialID)
	if !ok {
		return nil, ErrStudyNotFound
	}
	study, err := u.repo.GetStudy(ctx, userID, trialID)
	if err != nil {
		return nil, err
	}
	if study == nil {
		return nil, ErrStudyNotFound
	}
	return study, nil
}

func (u *patientUsecase) DeleteStudy(ctx context.Context, userID, trialID string) error {
	trialID, ok := normalizeTrialID(trialID)
	if !ok {
		return ErrStudyNotFound
	}
	deleted, err := u.repo.DeleteStudy(ctx, userID, trialID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrStudyNotFound
	}
	return nil
}

// SortNewestFirst orders studies by save time, newest first, breaking ties by trial id.
func SortNewestFirst(studies []domain.SavedStudy) {
	slices.SortStableFunc(studies, func(a, b domain.SavedStudy) int {
		if c := b.SavedAt.Compare(a.SavedAt); c != 0 {
			return c
		}
		return strings.Compare(a.TrialID, b.TrialID)
	})
}
