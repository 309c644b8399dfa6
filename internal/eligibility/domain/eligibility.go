package domain

// NoCriteriaQuestion is the single question returned when a study lists no
// eligibility criteria.
const NoCriteriaQuestion = "No eligibility criteria were provided for this study."

// EligibilityQuestion is one yes/no screening question.
type EligibilityQuestion struct {
	Text     string `json:"text" firestore:"text"`
	Answered bool   `json:"answered" firestore:"answered"`
	Answer   string `json:"answer,omitempty" firestore:"answer,omitempty"`
}

// MatchResult is the decision derived from a set of answers.
type MatchResult struct {
	Match       bool   `json:"match" firestore:"match"`
	Explanation string `json:"explanation" firestore:"explanation"`
}
