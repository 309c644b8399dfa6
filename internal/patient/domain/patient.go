package domain

import (
	"time"

	eligdomain "trialfinder-backend/internal/eligibility/domain"
)

// PatientProfile is the single profile record a patient keeps.
type PatientProfile struct {
	UserID           string    `json:"userId" firestore:"userId"`
	CancerType       string    `json:"cancerType" firestore:"cancerType"`
	Stage            string    `json:"stage" firestore:"stage"`
	TreatmentHistory string    `json:"treatmentHistory" firestore:"treatmentHistory"`
	Age              *int      `json:"age,omitempty" firestore:"age,omitempty"`
	Gender           string    `json:"gender" firestore:"gender"`
	Location         string    `json:"location" firestore:"location"`
	UpdatedAt        time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// SavedStudy links a patient, a trial and the match decision they saved.
type SavedStudy struct {
	ID                  string                           `json:"id" firestore:"id"`
	UserID              string                           `json:"userId" firestore:"userId"`
	TrialID             string                           `json:"trialId" firestore:"trialId"`
	Title               string                           `json:"title" firestore:"title"`
	LeadSponsor         string                           `json:"leadSponsor" firestore:"leadSponsor"`
	SponsorKey          string                           `json:"-" firestore:"sponsorKey"`
	EligibilityCriteria string                           `json:"eligibilityCriteria" firestore:"eligibilityCriteria"`
	Questions           []eligdomain.EligibilityQuestion `json:"questions" firestore:"questions"`
	Answers             []string                         `json:"answers" firestore:"answers"`
	MatchResult         *eligdomain.MatchResult          `json:"matchResult,omitempty" firestore:"matchResult,omitempty"`
	SavedAt             time.Time                        `json:"timestamp" firestore:"timestamp"`
}

// SavedStudyID is the document id for a user's saved trial. Re-saving the
// same trial overwrites the record.
func SavedStudyID(userID, trialID string) string {
	return userID + "_" + trialID
}
