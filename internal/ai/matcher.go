package ai

import (
	"context"
	"fmt"
	"strings"
)

// CandidateProject is the reduced view of a catalog project that is allowed to reach the model.
type CandidateProject struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	RequiredSkills []string `json:"requiredSkills"`
}

// ProjectMatch is a single recommendation produced by a Matcher.
type ProjectMatch struct {
	ProjectID  string  `json:"projectId"`
	Reasoning  string  `json:"reasoning"`
	MatchScore float64 `json:"matchScore"`
}

// MatchResult keeps the ranking returned by the model.
type MatchResult []ProjectMatch

// IDs returns project ids in ranking order.
func (r MatchResult) IDs() []string {
	ids := make([]string, 0, len(r))
	for _, m := range r {
		ids = append(ids, m.ProjectID)
	}
	return ids
}

type Matcher interface {
	FindMatches(ctx context.Context, description string, projects []CandidateProject) (MatchResult, error)
}

// Language selects the language of the prompt and of the generated reasoning.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageCzech   Language = "cs"

	DefaultLanguage = LanguageEnglish
)

// ParseLanguage normalises a configured language. Empty input yields DefaultLanguage.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultLanguage, nil
	case "en", "english":
		return LanguageEnglish, nil
	case "cs", "cz", "czech":
		return LanguageCzech, nil
	default:
		return "", fmt.Errorf("unsupported output language: %q", s)
	}
}

// MinScore and MaxScore bound ProjectMatch.MatchScore.
const (
	MinScore = 0
	MaxScore = 100
)
