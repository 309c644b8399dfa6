package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"trialfinder-backend/internal/eligibility/domain"
)

// QuestionsRequest is the body of POST /api/openai
type QuestionsRequest struct {
	Criteria string `json:"criteria"`
}

type QuestionsResponse struct {
	Questions []domain.EligibilityQuestion `json:"questions"`
}

// MatchRequest is the body of POST /api/match
type MatchRequest struct {
	Questions           QuestionList `json:"questions"`
	Answers             AnswerList   `json:"answers"`
	EligibilityCriteria string       `json:"eligibilityCriteria"`
}

// QuestionList accepts either plain strings or question objects.
type QuestionList []string

func (q *QuestionList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("questions must be an array")
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj domain.EligibilityQuestion
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("questions must be strings or {text} objects")
		}
		out = append(out, obj.Text)
	}
	*q = out
	return nil
}

// AnswerList accepts strings, booleans or numbers and keeps them as text.
type AnswerList []string

func (a *AnswerList) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("answers must be an array")
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		switch t := v.(type) {
		case nil:
			out = append(out, "")
		case string:
			out = append(out, strings.TrimSpace(t))
		case bool:
			if t {
				out = append(out, "Yes")
			} else {
				out = append(out, "No")
			}
		default:
			out = append(out, fmt.Sprint(t))
		}
	}
	*a = out
	return nil
}
