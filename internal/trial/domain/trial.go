package domain

import "time"

// NotSpecified replaces registry fields that are absent.
const NotSpecified = "Not specified"

// TrialSummary is one entry of a search result page.
type TrialSummary struct {
	ID               string `json:"id"`
	OriginalTitle    string `json:"originalTitle"`
	SimplifiedTitle  string `json:"simplifiedTitle"`
	MinimumAge       string `json:"minimumAge"`
	ParticipantCount string `json:"participantCount"`
	Status           string `json:"status"`
}

// TrialDetail is the full record shown on a study page.
type TrialDetail struct {
	TrialSummary
	OriginalDescription   string   `json:"originalDescription"`
	SimplifiedDescription string   `json:"simplifiedDescription"`
	EligibilityCriteria   string   `json:"eligibilityCriteria"`
	Locations             []string `json:"locations"`
	LeadSponsor           string   `json:"leadSponsor"`
}

// Simplification fields.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
)

// TrialSimplification stores LLM-simplified text for a trial field
type TrialSimplification struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TrialID   string    `json:"trial_id" gorm:"uniqueIndex:idx_trial_field;not null"`
	Field     string    `json:"field" gorm:"uniqueIndex:idx_trial_field;not null"`
	Text      string    `json:"text" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (TrialSimplification) TableName() string {
	return "trial_simplifications"
}
