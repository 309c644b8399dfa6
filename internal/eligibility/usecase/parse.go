package usecase

import (
	"regexp"
	"strings"

	"trialfinder-backend/internal/eligibility/domain"
)

var listMarker = regexp.MustCompile(`^(?:[-*•]\s+|\d+[.)]\s+)`)

// ParseQuestionLines splits a free-text reply into one question per non-blank
// line. Leading list markers are removed.
func ParseQuestionLines(text string) []domain.EligibilityQuestion {
	var out []domain.EligibilityQuestion
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, domain.EligibilityQuestion{Text: line})
	}
	return out
}

// ParseMatchText reads the two-line reply format: the first line is "Match"
// or "No Match" and the rest is the explanation. Only a first line equal to
// "Match" counts as a match.
func ParseMatchText(text string) domain.MatchResult {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	verdict := strings.Trim(strings.TrimSpace(lines[0]), "*#:. ")
	explanation := ""
	if len(lines) > 1 {
		explanation = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}
	return domain.MatchResult{
		Match:       strings.EqualFold(verdict, "match"),
		Explanation: explanation,
	}
}
