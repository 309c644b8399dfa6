// Package clinicaltrials is a client for the ClinicalTrials.gov v2 REST API.
package clinicaltrials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

var (
	ErrNotFound    = errors.New("study not found")
	ErrUnavailable = errors.New("clinical trials registry unavailable")
)

// Config contains configuration for the registry client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit int
}

// SearchParams maps to the /studies query parameters.
type SearchParams struct {
	Condition         string
	Location          string
	Intervention      string
	PageToken         string
	PageSize          int
	Statuses          []string
	Phases            []string
	Sex               string
	MinAge            *int
	MaxAge            *int
	HealthyVolunteers *bool
}

// Client handles interactions with ClinicalTrials.gov
type Client struct {
	baseURL    string
	httpClient *http.Client
	rateLimit  *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	log        logrus.FieldLogger
}

// NewClient creates a new registry client with a rate limiter and circuit breaker.
func NewClient(config Config, log logrus.FieldLogger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://clinicaltrials.gov/api/v2"
	}
	if config.Timeout == 0 {
		config.Timeout = 20 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 5
	}
	log = log.WithField("component", "clinicaltrials")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ClinicalTrials.gov",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
		},
	})

	return &Client{
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		breaker:   breaker,
		log:       log,
	}
}

// SearchStudies runs a registry search.
func (c *Client) SearchStudies(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("format", "json")
	if params.Condition != "" {
		q.Set("query.cond", params.Condition)
	}
	if params.Location != "" {
		q.Set("query.locn", params.Location)
	}
	if params.Intervention != "" {
		q.Set("query.intr", params.Intervention)
	}
	if params.PageToken != "" {
		q.Set("pageToken", params.PageToken)
	}
	if params.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(params.PageSize))
	}
	if len(params.Statuses) > 0 {
		statuses := make([]string, 0, len(params.Statuses))
		for _, s := range params.Statuses {
			statuses = append(statuses, enumValue(s))
		}
		q.Set("filter.overallStatus", strings.Join(statuses, ","))
	}
	if adv := advancedFilter(params); adv != "" {
		q.Set("filter.advanced", adv)
	}

	var out SearchResponse
	if err := c.get(ctx, "/studies?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStudy fetches one study by NCT id.
func (c *Client) GetStudy(ctx context.Context, nctID string) (*Study, error) {
	nctID = strings.ToUpper(strings.TrimSpace(nctID))
	if nctID == "" {
		return nil, ErrNotFound
	}
	var out Study
	if err := c.get(ctx, "/studies/"+url.PathEscape(nctID)+"?format=json", &out); err != nil {
		return nil, err
	}
	if out.ID() == "" {
		return nil, ErrNotFound
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.rateLimit.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait failed: %w", err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, path, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("registry API error (%d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse registry response: %w", err)
	}
	return nil
}

// advancedFilter builds the Essie expression for filters the API has no
// dedicated parameter for.
func advancedFilter(p SearchParams) string {
	var parts []string
	if len(p.Phases) > 0 {
		phases := make([]string, 0, len(p.Phases))
		for _, ph := range p.Phases {
			phases = append(phases, enumValue(ph))
		}
		parts = append(parts, "AREA[Phase]("+strings.Join(phases, " OR ")+")")
	}
	if sex := enumValue(p.Sex); sex == "FEMALE" || sex == "MALE" {
		parts = append(parts, "AREA[Sex]("+sex+" OR ALL)")
	}
	if p.MaxAge != nil {
		parts = append(parts, fmt.Sprintf("AREA[MinimumAge]RANGE[MIN, %d years]", *p.MaxAge))
	}
	if p.MinAge != nil {
		parts = append(parts, fmt.Sprintf("AREA[MaximumAge]RANGE[%d years, MAX]", *p.MinAge))
	}
	if p.HealthyVolunteers != nil {
		parts = append(parts, "AREA[HealthyVolunteers]"+strconv.FormatBool(*p.HealthyVolunteers))
	}
	return strings.Join(parts, " AND ")
}

// enumValue turns "not yet recruiting" or "Phase 2" into registry enum form.
func enumValue(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "_")
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, "PHASE_", "PHASE")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
