package gemini

import (
	"context"
	"unicode/utf8"

	"github.com/spigell/project-matcher/internal/ai"
	"github.com/spigell/project-matcher/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type contentGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// MatcherOptions tune the live matcher.
type MatcherOptions struct {
	Language     ai.Language
	MaxMatches   int
	MaxLogLength int
}

// Matcher ranks projects with a live Gemini model.
type Matcher struct {
	generator  contentGenerator
	language   ai.Language
	maxMatches int
	maxLogLen  int
	logger     *zap.Logger
}

var _ ai.Matcher = (*Matcher)(nil)

const defaultMaxLogLength = 200

func NewMatcher(generator contentGenerator, logger *zap.Logger, opts MatcherOptions) *Matcher {
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = defaultMaxLogLength
	}
	if opts.MaxMatches <= 0 {
		opts.MaxMatches = DefaultMaxMatches
	}
	if opts.Language == "" {
		opts.Language = ai.DefaultLanguage
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Matcher{
		generator:  generator,
		language:   opts.Language,
		maxMatches: opts.MaxMatches,
		maxLogLen:  opts.MaxLogLength,
		logger:     logger,
	}
}

func (m *Matcher) FindMatches(ctx context.Context, description string, projects []ai.CandidateProject) (ai.MatchResult, error) {
	req := BuildRequest(description, projects, m.language, m.maxMatches)

	m.logger.Debug("gemini generate content request",
		zap.Int("candidates", len(projects)),
		zap.Int("prompt_length", utf8.RuneCountInString(req.Prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(utils.OneLine(req.Prompt), m.maxLogLen)),
	)

	raw, err := m.generator.GenerateJSON(ctx, req.Prompt, req.Schema)
	if err != nil {
		m.logger.Warn("gemini request failed", zap.Error(err))
		return nil, ai.ModelFailure(err)
	}

	m.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(utils.OneLine(raw), m.maxLogLen)),
	)

	result, rejections, err := ParseMatches(raw)
	for _, r := range rejections {
		m.logger.Warn("dropped malformed match",
			zap.Int("index", r.Index),
			zap.String("reason", r.Reason),
		)
	}
	if err != nil {
		m.logger.Warn("gemini response rejected",
			zap.String("response_preview", utils.TruncateForLog(utils.OneLine(raw), m.maxLogLen)),
			zap.Error(err),
		)
		return nil, err
	}

	result = m.enforce(result, projects)

	m.logger.Debug("ai matching completed",
		zap.Int("matches", len(result)),
		zap.Strings("project_ids", result.IDs()),
	)

	return result, nil
}

// enforce drops ids that are not candidates or repeat an earlier match and caps
// the result at maxMatches. Model order is kept.
func (m *Matcher) enforce(result ai.MatchResult, projects []ai.CandidateProject) ai.MatchResult {
	known := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		known[p.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(result))
	kept := make(ai.MatchResult, 0, len(result))
	for _, match := range result {
		if _, ok := known[match.ProjectID]; !ok {
			m.logger.Warn("dropped match for unknown project", zap.String("project_id", match.ProjectID))
			continue
		}
		if _, dup := seen[match.ProjectID]; dup {
			m.logger.Warn("dropped duplicate match", zap.String("project_id", match.ProjectID))
			continue
		}
		seen[match.ProjectID] = struct{}{}
		kept = append(kept, match)
	}

	if len(kept) > m.maxMatches {
		m.logger.Debug("capped matches",
			zap.Int("returned", len(kept)),
			zap.Int("max_matches", m.maxMatches),
		)
		kept = kept[:m.maxMatches]
	}

	return kept
}
