package domain

import (
	"errors"
	"time"
)

var (
	ErrPharmacyNameTaken     = errors.New("pharmacy name is already registered")
	ErrPharmacyAlreadyExists = errors.New("account already has a pharmacy")
)

// Pharmacy is a sponsor organization registered by a pharmacy-role user.
// NormalizedName is the document id and the sponsor key saved studies are
// matched against.
type Pharmacy struct {
	ID             string    `json:"id" firestore:"id"`
	OwnerUserID    string    `json:"ownerUserId" firestore:"ownerUserId"`
	Name           string    `json:"name" firestore:"name"`
	NormalizedName string    `json:"normalizedName" firestore:"normalizedName"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt"`
}

// SponsoredStudy is the pharmacy's view of a saved study. Patient answers and
// identity are not exposed.
type SponsoredStudy struct {
	TrialID     string    `json:"trialId"`
	Title       string    `json:"title"`
	LeadSponsor string    `json:"leadSponsor"`
	Match       bool      `json:"match"`
	SavedAt     time.Time `json:"timestamp"`
}
