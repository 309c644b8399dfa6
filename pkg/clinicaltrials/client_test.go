package clinicaltrials

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const studyJSON = `{
  "protocolSection": {
    "identificationModule": {"nctId": "NCT01234567", "briefTitle": "Immunotherapy in Stage III Melanoma"},
    "statusModule": {"overallStatus": "RECRUITING"},
    "sponsorCollaboratorsModule": {"leadSponsor": {"name": "Acme Pharma"}},
    "descriptionModule": {"briefSummary": "A phase 2 study."},
    "designModule": {"phases": ["PHASE2"], "enrollmentInfo": {"count": 120}},
    "eligibilityModule": {"eligibilityCriteria": "Inclusion Criteria:\n* Age 18 or older", "minimumAge": "18 Years", "sex": "ALL"},
    "contactsLocationsModule": {"locations": [{"facility": "General Hospital", "city": "Boston", "state": "Massachusetts", "country": "United States"}]}
  }
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	log, _ := test.NewNullLogger()
	return NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, RateLimit: 100}, log)
}

func TestSearchStudies_QueryParameters(t *testing.T) {
	minAge, maxAge := 30, 65
	healthy := false

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/studies", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "melanoma", q.Get("query.cond"))
		assert.Equal(t, "Boston", q.Get("query.locn"))
		assert.Equal(t, "pembrolizumab", q.Get("query.intr"))
		assert.Equal(t, "tok", q.Get("pageToken"))
		assert.Equal(t, "30", q.Get("pageSize"))
		assert.Equal(t, "RECRUITING,NOT_YET_RECRUITING", q.Get("filter.overallStatus"))
		assert.Equal(t,
			"AREA[Phase](PHASE2 OR EARLY_PHASE1) AND AREA[Sex](FEMALE OR ALL) AND AREA[MinimumAge]RANGE[MIN, 65 years] AND AREA[MaximumAge]RANGE[30 years, MAX] AND AREA[HealthyVolunteers]false",
			q.Get("filter.advanced"))
		_, _ = w.Write([]byte(`{"studies":[` + studyJSON + `],"nextPageToken":"next"}`))
	})

	resp, err := client.SearchStudies(context.Background(), SearchParams{
		Condition:         "melanoma",
		Location:          "Boston",
		Intervention:      "pembrolizumab",
		PageToken:         "tok",
		PageSize:          30,
		Statuses:          []string{"recruiting", "not yet recruiting"},
		Phases:            []string{"Phase 2", "early phase 1"},
		Sex:               "female",
		MinAge:            &minAge,
		MaxAge:            &maxAge,
		HealthyVolunteers: &healthy,
	})
	require.NoError(t, err)
	require.Len(t, resp.Studies, 1)
	assert.Equal(t, "next", resp.NextPageToken)

	s := resp.Studies[0]
	assert.Equal(t, "NCT01234567", s.ID())
	assert.Equal(t, "Immunotherapy in Stage III Melanoma", s.Title())
	assert.Equal(t, 120, s.ProtocolSection.Design.EnrollmentInfo.Count)
	assert.Equal(t, "Acme Pharma", s.ProtocolSection.SponsorCollaborator.LeadSponsor.Name)
}

func TestGetStudy(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/studies/NCT01234567":
			_, _ = w.Write([]byte(studyJSON))
		case "/studies/NCT00000000":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	study, err := client.GetStudy(context.Background(), "nct01234567")
	require.NoError(t, err)
	assert.Equal(t, "RECRUITING", study.ProtocolSection.Status.OverallStatus)
	require.Len(t, study.ProtocolSection.ContactsLocations.Locations, 1)

	_, err = client.GetStudy(context.Background(), "NCT00000000")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetStudy(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetStudy(context.Background(), "NCT99999999")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestCircuitBreakerOpens(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 3; i++ {
		_, err := client.SearchStudies(context.Background(), SearchParams{Condition: "x"})
		require.Error(t, err)
	}
	_, err := client.SearchStudies(context.Background(), SearchParams{Condition: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, calls)
}

func TestParseAgeYears(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"18 Years", 18, true},
		{"6 Months", 0.5, true},
		{"65 years", 65, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"12", 12, true},
	}
	for _, tt := range tests {
		got, ok := ParseAgeYears(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.InDelta(t, tt.want, got, 0.001, tt.in)
	}
}
