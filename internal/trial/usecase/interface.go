package usecase

import (
	"context"
	"errors"

	"trialfinder-backend/internal/trial/domain"
	"trialfinder-backend/pkg/clinicaltrials"
)

var (
	ErrConditionRequired = errors.New("condition text is required")
	ErrNoStudies         = errors.New("no studies found")
	ErrStudyNotFound     = errors.New("study not found")
)

// TrialUsecase defines the interface for trial search and detail
type TrialUsecase interface {
	// Search returns one page of simplified trials for a condition
	Search(ctx context.Context, in SearchInput) (*SearchResult, error)
	// GetDetail returns the merged detail record for a trial id
	GetDetail(ctx context.Context, trialID string) (*domain.TrialDetail, error)
}

// Registry is the subset of the ClinicalTrials.gov client the usecase needs.
type Registry interface {
	SearchStudies(ctx context.Context, params clinicaltrials.SearchParams) (*clinicaltrials.SearchResponse, error)
	GetStudy(ctx context.Context, nctID string) (*clinicaltrials.Study, error)
}

// SearchInput is a search page request.
type SearchInput struct {
	Condition    string
	Age          *int
	Location     string
	Intervention string
	PageToken    string
	PageSize     int
	SeenIDs      []string
	Filters      Filters
}

// Filters narrow the registry query.
type Filters struct {
	Statuses          []string
	Phases            []string
	Gender            string
	MinAge            *int
	MaxAge            *int
	HealthyVolunteers *bool
}

// SearchResult is one page of results.
type SearchResult struct {
	Studies       []domain.TrialSummary `json:"studies"`
	NextPageToken string                `json:"nextPageToken"`
	HasMore       bool                  `json:"hasMore"`
}
