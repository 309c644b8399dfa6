package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trialfinder-backend/internal/trial/domain"
	"trialfinder-backend/internal/trial/repository"
	"trialfinder-backend/pkg/ai"
	"trialfinder-backend/pkg/cache"

	"github.com/sirupsen/logrus"
)

const (
	normalizeSystemPrompt = `You turn a patient's free-text description of their condition into a short search term for the ClinicalTrials.gov registry.
Return the medical condition name only (for example "breast cancer" or "type 2 diabetes"), without stage, treatment history or filler words.`

	simplifyTitleSystemPrompt = `You rewrite clinical trial titles in plain language a patient with no medical training can understand.
Keep it to one sentence, keep the condition and the treatment being studied, and do not add facts that are not in the title.`

	simplifyDescriptionSystemPrompt = `You rewrite clinical trial descriptions in plain language a patient with no medical training can understand.
Use short sentences, explain what participants will do and what the study is testing, and do not add facts that are not in the text.`
)

var (
	termSchema = &ai.ResponseSchema{
		Name:   "search_term",
		Schema: ai.Object(map[string]*ai.Schema{"term": ai.String("the normalized condition")}),
	}
	titleSchema = &ai.ResponseSchema{
		Name:   "simplified_title",
		Schema: ai.Object(map[string]*ai.Schema{"simplifiedTitle": ai.String("the plain-language title")}),
	}
	descriptionSchema = &ai.ResponseSchema{
		Name:   "simplified_description",
		Schema: ai.Object(map[string]*ai.Schema{"simplifiedDescription": ai.String("the plain-language description")}),
	}
)

// Simplifier wraps the LLM calls of the trial flow. Every method degrades to
// its input when the provider fails.
type Simplifier struct {
	llm   ai.Completer
	cache cache.Store
	repo  repository.SimplificationRepository
	log   logrus.FieldLogger
}

// NewSimplifier builds a simplifier. repo may be nil when no database is configured.
func NewSimplifier(llm ai.Completer, store cache.Store, repo repository.SimplificationRepository, log logrus.FieldLogger) *Simplifier {
	if store == nil {
		store = cache.NewMemory(1000, time.Hour)
	}
	return &Simplifier{
		llm:   llm,
		cache: store,
		repo:  repo,
		log:   log.WithField("component", "trial.simplifier"),
	}
}

// NormalizeCondition maps free text to a registry search term.
func (s *Simplifier) NormalizeCondition(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	key := "term:" + strings.ToLower(text)

	var cached string
	if ok, _ := cache.GetJSON(ctx, s.cache, key, &cached); ok && cached != "" {
		return cached
	}

	raw, err := s.llm.Complete(ctx, ai.Prompt(normalizeSystemPrompt, text, termSchema))
	if err != nil {
		s.log.WithError(err).Warn("condition normalization failed, using input")
		return text
	}
	var out struct {
		Term string `json:"term"`
	}
	term := ""
	if err := ai.DecodeJSON(raw, &out); err == nil {
		term = strings.TrimSpace(out.Term)
	} else {
		term = strings.Trim(strings.TrimSpace(firstLine(raw)), `"'.`)
	}
	if term == "" {
		return text
	}
	_ = cache.SetJSON(ctx, s.cache, key, term, 0)
	return term
}

// Title returns the simplified title of a trial.
func (s *Simplifier) Title(ctx context.Context, trialID, title string) string {
	return s.simplify(ctx, trialID, domain.FieldTitle, title, simplifyTitleSystemPrompt, titleSchema, "simplifiedTitle")
}

// Description returns the simplified description of a trial.
func (s *Simplifier) Description(ctx context.Context, trialID, description string) string {
	return s.simplify(ctx, trialID, domain.FieldDescription, description, simplifyDescriptionSystemPrompt, descriptionSchema, "simplifiedDescription")
}

func (s *Simplifier) simplify(ctx context.Context, trialID, field, text, system string, schema *ai.ResponseSchema, jsonField string) string {
	if strings.TrimSpace(text) == "" || text == domain.NotSpecified {
		return text
	}
	key := fmt.Sprintf("simplify:%s:%s", field, trialID)
	log := s.log.WithFields(logrus.Fields{"trial_id": trialID, "field": field})

	var cached string
	if ok, _ := cache.GetJSON(ctx, s.cache, key, &cached); ok && cached != "" {
		return cached
	}
	if s.repo != nil {
		row, err := s.repo.GetSimplification(trialID, field)
		if err != nil {
			log.WithError(err).Warn("simplification lookup failed")
		} else if row != nil && row.Text != "" {
			_ = cache.SetJSON(ctx, s.cache, key, row.Text, 0)
			return row.Text
		}
	}

	raw, err := s.llm.Complete(ctx, ai.Prompt(system, text, schema))
	if err != nil {
		log.WithError(err).Warn("simplification failed, returning original text")
		return text
	}

	var out map[string]string
	simplified := ""
	if err := ai.DecodeJSON(raw, &out); err == nil {
		simplified = strings.TrimSpace(out[jsonField])
	} else {
		simplified = strings.TrimSpace(raw)
	}
	if simplified == "" {
		return text
	}

	_ = cache.SetJSON(ctx, s.cache, key, simplified, 0)
	if s.repo != nil {
		if err := s.repo.SaveSimplification(trialID, field, simplified); err != nil {
			log.WithError(err).Warn("failed to persist simplification")
		}
	}
	return simplified
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
