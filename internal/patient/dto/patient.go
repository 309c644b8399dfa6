package dto

import (
	eligdomain "trialfinder-backend/internal/eligibility/domain"
	eligdto "trialfinder-backend/internal/eligibility/dto"
	"trialfinder-backend/internal/patient/domain"
	"trialfinder-backend/internal/patient/usecase"
	trialdto "trialfinder-backend/internal/trial/dto"
)

// ProfileRequest is the body of PUT /api/profile
type ProfileRequest struct {
	CancerType       string               `json:"cancerType"`
	Stage            string               `json:"stage"`
	TreatmentHistory string               `json:"treatmentHistory"`
	Age              trialdto.OptionalInt `json:"age"`
	Gender           string               `json:"gender"`
	Location         string               `json:"location"`
}

func (r ProfileRequest) ToDomain() domain.PatientProfile {
	return domain.PatientProfile{
		CancerType:       r.CancerType,
		Stage:            r.Stage,
		TreatmentHistory: r.TreatmentHistory,
		Age:              r.Age.Value,
		Gender:           r.Gender,
		Location:         r.Location,
	}
}

// SaveStudyRequest is the body of POST /api/saved-studies
type SaveStudyRequest struct {
	TrialID             string                  `json:"trialId"`
	Title               string                  `json:"title"`
	LeadSponsor         string                  `json:"leadSponsor"`
	EligibilityCriteria string                  `json:"eligibilityCriteria"`
	Questions           eligdto.QuestionList    `json:"questions"`
	Answers             eligdto.AnswerList      `json:"answers"`
	MatchResult         *eligdomain.MatchResult `json:"matchResult"`
}

func (r SaveStudyRequest) ToInput() usecase.SaveStudyInput {
	questions := make([]eligdomain.EligibilityQuestion, 0, len(r.Questions))
	for _, q := range r.Questions {
		questions = append(questions, eligdomain.EligibilityQuestion{Text: q})
	}
	return usecase.SaveStudyInput{
		TrialID:             r.TrialID,
		Title:               r.Title,
		LeadSponsor:         r.LeadSponsor,
		EligibilityCriteria: r.EligibilityCriteria,
		Questions:           questions,
		Answers:             r.Answers,
		MatchResult:         r.MatchResult,
	}
}

type SavedStudiesResponse struct {
	Studies []domain.SavedStudy `json:"studies"`
	Total   int                 `json:"total"`
}
