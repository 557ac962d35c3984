// Package fallback answers matching requests when no model credential is configured.
// The answers are illustrative: they have the right shape and timing but are not a real ranking.
package fallback

import (
	"context"
	"slices"
	"time"

	"github.com/spigell/project-matcher/internal/ai"
	"github.com/spigell/project-matcher/internal/utils"
	"go.uber.org/zap"
)

// DefaultDelay keeps the loading state visible as it would be with a live model.
const DefaultDelay = 1500 * time.Millisecond

// Reference ids used when the catalog is empty.
const (
	ReferenceFirstID  = "p1"
	ReferenceSecondID = "p2"
)

type canned struct {
	score     float64
	reasoning map[ai.Language]string
}

var cannedMatches = []canned{
	{
		score: 95,
		reasoning: map[ai.Language]string{
			ai.LanguageEnglish: "This project is a strong match: the technologies it needs are the ones you mentioned, and it fits your interest in apps with social impact.",
			ai.LanguageCzech:   "Tento projekt se skvěle hodí: vyžaduje technologie, které jsi zmínil, a odpovídá tvému zájmu o aplikace se sociálním dopadem.",
		},
	},
	{
		score: 85,
		reasoning: map[ai.Language]string{
			ai.LanguageEnglish: "Your design and web skills are relevant here, and the project lets you apply them on a platform with real reach.",
			ai.LanguageCzech:   "Tvoje dovednosti v designu a webu jsou zde užitečné a projekt ti umožní uplatnit je na platformě se skutečným dosahem.",
		},
	},
}

// Matcher is the degraded-mode ai.Matcher. It never touches the network.
type Matcher struct {
	delay    time.Duration
	language ai.Language
	logger   *zap.Logger
}

var _ ai.Matcher = (*Matcher)(nil)

// New returns a degraded matcher. A negative delay disables waiting.
func New(delay time.Duration, language ai.Language, logger *zap.Logger) *Matcher {
	if delay == 0 {
		delay = DefaultDelay
	}
	if language == "" {
		language = ai.DefaultLanguage
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Matcher{delay: delay, language: language, logger: logger}
}

// FindMatches waits for the simulated delay and returns up to two canned matches
// for the first candidates, or for the reference ids when there are none.
func (m *Matcher) FindMatches(ctx context.Context, _ string, projects []ai.CandidateProject) (ai.MatchResult, error) {
	m.logger.Info("using canned matches, no model credential configured",
		zap.Duration("delay", m.delay),
	)

	if err := utils.WaitFor(ctx, m.delay); err != nil {
		return nil, ai.ModelFailure(err)
	}

	ids := fallbackIDs(projects)
	result := make(ai.MatchResult, 0, len(ids))
	for i, id := range ids {
		result = append(result, ai.ProjectMatch{
			ProjectID:  id,
			Reasoning:  cannedMatches[i].reasoning[m.language],
			MatchScore: cannedMatches[i].score,
		})
	}

	return result, nil
}

func fallbackIDs(projects []ai.CandidateProject) []string {
	if len(projects) == 0 {
		return []string{ReferenceFirstID, ReferenceSecondID}
	}

	ids := make([]string, 0, len(cannedMatches))
	for _, p := range projects {
		if len(ids) == len(cannedMatches) {
			break
		}
		if p.ID == "" || slices.Contains(ids, p.ID) {
			continue
		}
		ids = append(ids, p.ID)
	}
	if len(ids) == 0 {
		return []string{ReferenceFirstID, ReferenceSecondID}
	}

	return ids
}
