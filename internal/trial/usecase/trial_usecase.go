package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"trialfinder-backend/internal/trial/domain"
	"trialfinder-backend/pkg/cache"
	"trialfinder-backend/pkg/clinicaltrials"
	"trialfinder-backend/pkg/fuzzy"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize = 10
	maxPageSize     = 20
	overFetchFactor = 3
	maxFetchSize    = 100
	maxPagesPerCall = 3
)

// Options tunes the usecase.
type Options struct {
	SimplifyConcurrency int
	DetailTTL           time.Duration
}

type trialUsecase struct {
	registry   Registry
	simplifier *Simplifier
	cache      cache.Store
	opts       Options
	log        logrus.FieldLogger
}

// NewTrialUsecase creates a new instance of trialUsecase
func NewTrialUsecase(registry Registry, simplifier *Simplifier, store cache.Store, opts Options, log logrus.FieldLogger) TrialUsecase {
	if opts.SimplifyConcurrency <= 0 {
		opts.SimplifyConcurrency = 1
	}
	if store == nil {
		store = cache.NewMemory(1000, time.Hour)
	}
	return &trialUsecase{
		registry:   registry,
		simplifier: simplifier,
		cache:      store,
		opts:       opts,
		log:        log.WithField("component", "trial.usecase"),
	}
}

func (u *trialUsecase) Search(ctx context.Context, in SearchInput) (*SearchResult, error) {
	condition := strings.TrimSpace(in.Condition)
	if condition == "" {
		return nil, ErrConditionRequired
	}
	pageSize := clampPageSize(in.PageSize)
	fetchSize := min(pageSize*overFetchFactor, maxFetchSize)

	term := u.simplifier.NormalizeCondition(ctx, condition)
	log := u.log.WithFields(logrus.Fields{"condition": condition, "term": term})

	seen := make(map[string]struct{}, len(in.SeenIDs))
	for _, id := range in.SeenIDs {
		seen[strings.ToUpper(strings.TrimSpace(id))] = struct{}{}
	}
	titles := make(map[string]struct{})

	params := clinicaltrials.SearchParams{
		Condition:         term,
		Location:          strings.TrimSpace(in.Location),
		Intervention:      strings.TrimSpace(in.Intervention),
		PageToken:         in.PageToken,
		PageSize:          fetchSize,
		Statuses:          in.Filters.Statuses,
		Phases:            in.Filters.Phases,
		Sex:               in.Filters.Gender,
		MinAge:            in.Filters.MinAge,
		MaxAge:            in.Filters.MaxAge,
		HealthyVolunteers: in.Filters.HealthyVolunteers,
	}

	var (
		retained  []clinicaltrials.Study
		nextToken string
		hasMore   bool
	)
	for page := 0; page < maxPagesPerCall; page++ {
		current := params.PageToken
		resp, err := u.registry.SearchStudies(ctx, params)
		if err != nil {
			if page == 0 {
				log.WithError(err).Warn("registry search failed")
				return nil, fmt.Errorf("%w: %v", ErrNoStudies, err)
			}
			log.WithError(err).Warn("registry follow-up page failed, returning partial page")
			break
		}
		if page == 0 && len(resp.Studies) == 0 {
			return nil, ErrNoStudies
		}

		scanned := true
		for _, study := range resp.Studies {
			if len(retained) >= pageSize {
				scanned = false
				break
			}
			if !u.keep(study, in.Age, seen, titles) {
				continue
			}
			retained = append(retained, study)
		}

		// A partly scanned page is served again next time; the caller's seen
		// ids drop what this call already returned.
		if !scanned {
			nextToken = current
			hasMore = true
			break
		}
		nextToken = resp.NextPageToken
		hasMore = nextToken != ""
		if len(retained) >= pageSize || nextToken == "" {
			break
		}
		params.PageToken = nextToken
	}

	summaries := make([]domain.TrialSummary, len(retained))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.SimplifyConcurrency)
	for i, study := range retained {
		summaries[i] = toSummary(study)
		g.Go(func() error {
			summaries[i].SimplifiedTitle = u.simplifier.Title(gctx, summaries[i].ID, summaries[i].OriginalTitle)
			return nil
		})
	}
	_ = g.Wait()

	log.WithFields(logrus.Fields{"returned": len(summaries), "has_more": hasMore}).Info("search page served")
	return &SearchResult{
		Studies:       summaries,
		NextPageToken: nextToken,
		HasMore:       hasMore,
	}, nil
}

// keep applies the seen-id, duplicate and minimum-age filters and records the
// study as seen when it is kept.
func (u *trialUsecase) keep(study clinicaltrials.Study, age *int, seen, titles map[string]struct{}) bool {
	id := strings.ToUpper(study.ID())
	if id == "" {
		return false
	}
	if _, ok := seen[id]; ok {
		return false
	}
	titleKey := fuzzy.Normalize(study.Title())
	if _, ok := titles[titleKey]; ok && titleKey != "" {
		return false
	}
	if age != nil {
		if minAge, ok := clinicaltrials.ParseAgeYears(study.ProtocolSection.Eligibility.MinimumAge); ok && minAge > float64(*age) {
			return false
		}
	}
	seen[id] = struct{}{}
	titles[titleKey] = struct{}{}
	return true
}

func (u *trialUsecase) GetDetail(ctx context.Context, trialID string) (*domain.TrialDetail, error) {
	trialID = strings.ToUpper(strings.TrimSpace(trialID))
	if trialID == "" {
		return nil, ErrStudyNotFound
	}

	detail, err := u.fetchDetail(ctx, trialID)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		detail.SimplifiedTitle = u.simplifier.Title(gctx, detail.ID, detail.OriginalTitle)
		return nil
	})
	g.Go(func() error {
		detail.SimplifiedDescription = u.simplifier.Description(gctx, detail.ID, detail.OriginalDescription)
		return nil
	})
	_ = g.Wait()

	return &detail, nil
}

// fetchDetail returns the unsimplified detail. Simplified text is cached
// separately by the Simplifier.
func (u *trialUsecase) fetchDetail(ctx context.Context, trialID string) (domain.TrialDetail, error) {
	key := "detail:" + trialID
	var cached domain.TrialDetail
	if ok, _ := cache.GetJSON(ctx, u.cache, key, &cached); ok {
		return cached, nil
	}

	study, err := u.registry.GetStudy(ctx, trialID)
	if err != nil {
		u.log.WithError(err).WithField("trial_id", trialID).Warn("registry detail fetch failed")
		if errors.Is(err, clinicaltrials.ErrNotFound) {
			return domain.TrialDetail{}, ErrStudyNotFound
		}
		return domain.TrialDetail{}, fmt.Errorf("%w: %v", ErrStudyNotFound, err)
	}

	detail := toDetail(*study)
	if err := cache.SetJSON(ctx, u.cache, key, detail, u.opts.DetailTTL); err != nil {
		u.log.WithError(err).Warn("failed to cache trial detail")
	}
	return detail, nil
}

func clampPageSize(n int) int {
	if n <= 0 {
		return defaultPageSize
	}
	return min(n, maxPageSize)
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.NotSpecified
	}
	return strings.TrimSpace(s)
}

func toSummary(s clinicaltrials.Study) domain.TrialSummary {
	ps := s.ProtocolSection
	participants := domain.NotSpecified
	if n := ps.Design.EnrollmentInfo.Count; n > 0 {
		participants = strconv.Itoa(n)
	}
	title := orNotSpecified(s.Title())
	return domain.TrialSummary{
		ID:               s.ID(),
		OriginalTitle:    title,
		SimplifiedTitle:  title,
		MinimumAge:       orNotSpecified(ps.Eligibility.MinimumAge),
		ParticipantCount: participants,
		Status:           orNotSpecified(ps.Status.OverallStatus),
	}
}

func toDetail(s clinicaltrials.Study) domain.TrialDetail {
	ps := s.ProtocolSection
	summary := toSummary(s)

	description := ps.Description.BriefSummary
	if strings.TrimSpace(description) == "" {
		description = ps.Description.DetailedDescription
	}
	description = orNotSpecified(description)

	locations := make([]string, 0, len(ps.ContactsLocations.Locations))
	for _, loc := range ps.ContactsLocations.Locations {
		locations = append(locations, formatLocation(loc))
	}
	if len(locations) == 0 {
		locations = append(locations, domain.NotSpecified)
	}

	return domain.TrialDetail{
		TrialSummary:          summary,
		OriginalDescription:   description,
		SimplifiedDescription: description,
		EligibilityCriteria:   orNotSpecified(ps.Eligibility.EligibilityCriteria),
		Locations:             locations,
		LeadSponsor:           orNotSpecified(ps.SponsorCollaborator.LeadSponsor.Name),
	}
}

// formatLocation renders "facility, city, state, country" with missing
// parts replaced by the sentinel.
func formatLocation(l clinicaltrials.Location) string {
	return strings.Join([]string{
		orNotSpecified(l.Facility),
		orNotSpecified(l.City),
		orNotSpecified(l.State),
		orNotSpecified(l.Country),
	}, ", ")
}
