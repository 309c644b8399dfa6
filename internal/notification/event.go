package notification

import "time"

// EventStudySaved is published when a patient saves a study they matched.
const EventStudySaved = "study.saved"

// StudySavedEvent tells the sponsor's pharmacy that a matching patient saved
// one of its trials. It carries no answers or profile data.
type StudySavedEvent struct {
	Type       string    `json:"type"`
	TrialID    string    `json:"trialId"`
	Title      string    `json:"title"`
	SponsorKey string    `json:"sponsorKey"`
	SavedAt    time.Time `json:"savedAt"`
}
