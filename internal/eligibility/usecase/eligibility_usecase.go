package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trialfinder-backend/internal/eligibility/domain"
	trialdomain "trialfinder-backend/internal/trial/domain"
	"trialfinder-backend/pkg/ai"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoQuestions      = errors.New("questions are required")
	ErrAnswerMismatch   = errors.New("answers must match questions one to one")
	ErrGenerationFailed = errors.New("failed to generate eligibility questions")
	ErrMatchFailed      = errors.New("failed to evaluate eligibility")
)

const (
	questionSystemPrompt = `You help patients check whether they may qualify for a clinical trial.
Turn the eligibility criteria into an exhaustive list of simple yes/no questions a patient can answer.
Cover every inclusion and exclusion criterion, one criterion per question, in plain language.`

	matchSystemPrompt = `You decide whether a patient appears to meet a clinical trial's eligibility criteria.
You are given the criteria and the patient's answers to screening questions.
Decide match or no match and give a short explanation in plain language.`
)

var (
	questionsSchema = &ai.ResponseSchema{
		Name: "eligibility_questions",
		Schema: ai.Object(map[string]*ai.Schema{
			"questions": ai.ArrayOf(ai.String("a yes/no question"), "one question per criterion"),
		}),
	}
	matchSchema = &ai.ResponseSchema{
		Name: "eligibility_match",
		Schema: ai.Object(map[string]*ai.Schema{
			"match":       ai.Boolean("true when the patient appears eligible"),
			"explanation": ai.String("short plain-language reason"),
		}),
	}
)

// EligibilityUsecase defines the screening question and match operations
type EligibilityUsecase interface {
	GenerateQuestions(ctx context.Context, criteria string) ([]domain.EligibilityQuestion, error)
	Match(ctx context.Context, questions, answers []string, criteria string) (*domain.MatchResult, error)
}

type eligibilityUsecase struct {
	llm ai.Completer
	log logrus.FieldLogger
}

// NewEligibilityUsecase creates a new instance of eligibilityUsecase
func NewEligibilityUsecase(llm ai.Completer, log logrus.FieldLogger) EligibilityUsecase {
	return &eligibilityUsecase{
		llm: llm,
		log: log.WithField("component", "eligibility"),
	}
}

func (u *eligibilityUsecase) GenerateQuestions(ctx context.Context, criteria string) ([]domain.EligibilityQuestion, error) {
	criteria = strings.TrimSpace(criteria)
	if !hasCriteria(criteria) {
		return []domain.EligibilityQuestion{{Text: domain.NoCriteriaQuestion}}, nil
	}

	raw, err := u.llm.Complete(ctx, ai.CompletionRequest{
		System:      questionSystemPrompt,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: "Eligibility criteria:\n" + criteria}},
		Schema:      questionsSchema,
		Temperature: 0.2,
		MaxTokens:   2048,
	})
	if err != nil {
		u.log.WithError(err).Error("question generation failed")
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	var out struct {
		Questions []string `json:"questions"`
	}
	var questions []domain.EligibilityQuestion
	if err := ai.DecodeJSON(raw, &out); err == nil {
		for _, q := range out.Questions {
			if q = strings.TrimSpace(q); q != "" {
				questions = append(questions, domain.EligibilityQuestion{Text: q})
			}
		}
	} else {
		u.log.WithError(err).Debug("question reply is not JSON, splitting lines")
		questions = ParseQuestionLines(raw)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: provider returned no questions", ErrGenerationFailed)
	}
	return questions, nil
}

func (u *eligibilityUsecase) Match(ctx context.Context, questions, answers []string, criteria string) (*domain.MatchResult, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if len(answers) != len(questions) {
		return nil, ErrAnswerMismatch
	}

	var sb strings.Builder
	sb.WriteString("Eligibility criteria:\n")
	sb.WriteString(strings.TrimSpace(criteria))
	sb.WriteString("\n\nPatient answers:\n")
	for i, q := range questions {
		fmt.Fprintf(&sb, "%d. Q: %s\n   A: %s\n", i+1, strings.TrimSpace(q), strings.TrimSpace(answers[i]))
	}

	raw, err := u.llm.Complete(ctx, ai.Prompt(matchSystemPrompt, sb.String(), matchSchema))
	if err != nil {
		u.log.WithError(err).Error("match evaluation failed")
		return nil, fmt.Errorf("%w: %v", ErrMatchFailed, err)
	}

	var out struct {
		Match       *bool  `json:"match"`
		Explanation string `json:"explanation"`
	}
	if err := ai.DecodeJSON(raw, &out); err == nil && out.Match != nil {
		return &domain.MatchResult{Match: *out.Match, Explanation: strings.TrimSpace(out.Explanation)}, nil
	}

	result := ParseMatchText(raw)
	return &result, nil
}

// hasCriteria reports whether criteria carries text, treating the detail
// fetcher's "Not specified" placeholder as absent.
func hasCriteria(criteria string) bool {
	return criteria != "" && !strings.EqualFold(criteria, trialdomain.NotSpecified)
}
