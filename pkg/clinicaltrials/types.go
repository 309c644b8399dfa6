package clinicaltrials

// SearchResponse is the body of GET /studies.
type SearchResponse struct {
	Studies       []Study `json:"studies"`
	NextPageToken string  `json:"nextPageToken"`
	TotalCount    int     `json:"totalCount"`
}

// Study is one registry record. Only the protocol section is decoded.
type Study struct {
	ProtocolSection ProtocolSection `json:"protocolSection"`
}

type ProtocolSection struct {
	Identification      IdentificationModule      `json:"identificationModule"`
	Status              StatusModule              `json:"statusModule"`
	SponsorCollaborator SponsorCollaboratorModule `json:"sponsorCollaboratorsModule"`
	Description         DescriptionModule         `json:"descriptionModule"`
	Conditions          ConditionsModule          `json:"conditionsModule"`
	Design              DesignModule              `json:"designModule"`
	Eligibility         EligibilityModule         `json:"eligibilityModule"`
	ContactsLocations   ContactsLocationsModule   `json:"contactsLocationsModule"`
}

type IdentificationModule struct {
	NCTID         string `json:"nctId"`
	BriefTitle    string `json:"briefTitle"`
	OfficialTitle string `json:"officialTitle"`
}

type StatusModule struct {
	OverallStatus string `json:"overallStatus"`
}

type SponsorCollaboratorModule struct {
	LeadSponsor struct {
		Name  string `json:"name"`
		Class string `json:"class"`
	} `json:"leadSponsor"`
}

type DescriptionModule struct {
	BriefSummary        string `json:"briefSummary"`
	DetailedDescription string `json:"detailedDescription"`
}

type ConditionsModule struct {
	Conditions []string `json:"conditions"`
	Keywords   []string `json:"keywords"`
}

type DesignModule struct {
	StudyType      string   `json:"studyType"`
	Phases         []string `json:"phases"`
	EnrollmentInfo struct {
		Count int    `json:"count"`
		Type  string `json:"type"`
	} `json:"enrollmentInfo"`
}

type EligibilityModule struct {
	EligibilityCriteria string `json:"eligibilityCriteria"`
	HealthyVolunteers   bool   `json:"healthyVolunteers"`
	Sex                 string `json:"sex"`
	MinimumAge          string `json:"minimumAge"`
	MaximumAge          string `json:"maximumAge"`
}

type ContactsLocationsModule struct {
	Locations []Location `json:"locations"`
}

type Location struct {
	Facility string `json:"facility"`
	Status   string `json:"status"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// ID returns the NCT id.
func (s Study) ID() string { return s.ProtocolSection.Identification.NCTID }

// Title prefers the brief title and falls back to the official one.
func (s Study) Title() string {
	id := s.ProtocolSection.Identification
	if id.BriefTitle != "" {
		return id.BriefTitle
	}
	return id.OfficialTitle
}
