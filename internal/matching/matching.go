// Package matching picks the matcher implementation from configuration.
package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/project-matcher/internal/ai"
	"github.com/spigell/project-matcher/internal/ai/fallback"
	"github.com/spigell/project-matcher/internal/ai/gemini"
	"github.com/spigell/project-matcher/internal/logger"
	"github.com/spigell/project-matcher/internal/secrets"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ProviderGemini is the only live provider.
const ProviderGemini = "gemini"

// Mode reports how matches are produced.
type Mode string

const (
	ModeLive     Mode = "live"
	ModeDegraded Mode = "degraded"
)

// CredentialEnv lists the environment variables consulted for the model credential.
var CredentialEnv = []string{"GEMINI_API_KEY", "API_KEY"}

// Config holds the recognized matcher options.
type Config struct {
	Credential     string
	CredentialFile string
	// CredentialEnv overrides the environment variables consulted for the credential.
	// nil means CredentialEnv.
	CredentialEnv  []string
	ModelID        string
	OutputLanguage string
	MaxMatches     int
	Timeout        time.Duration
	FallbackDelay  time.Duration
	MaxLogLength   int
}

// generatorFactory is replaced in tests to avoid creating a real client.
var generatorFactory = func(ctx context.Context, apiKey, model string, timeout time.Duration, logger *zap.Logger) (generator, error) {
	gen, err := gemini.NewGenerator(ctx, apiKey, model, timeout, logger)
	if err != nil {
		return nil, err
	}
	return gen, nil
}

type generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
	Model() string
}

// New builds the matcher for cfg. A missing credential is not an error: the
// degraded matcher is returned and a warning is logged.
func New(ctx context.Context, cfg Config, log *zap.Logger) (ai.Matcher, Mode, error) {
	if log == nil {
		log = zap.NewNop()
	}

	language, err := ai.ParseLanguage(cfg.OutputLanguage)
	if err != nil {
		return nil, "", err
	}

	env := cfg.CredentialEnv
	if env == nil {
		env = CredentialEnv
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Credential,
		File:  cfg.CredentialFile,
		Env:   env,
	})
	switch {
	case errors.Is(err, secrets.ErrNotConfigured):
		degradedLogger := log.With(zap.String(logger.FieldMode, string(ModeDegraded)))
		degradedLogger.Warn("gemini api key is not configured, matches will be canned examples")
		return fallback.New(cfg.FallbackDelay, language, degradedLogger), ModeDegraded, nil
	case err != nil:
		return nil, "", fmt.Errorf("load gemini api key: %w", err)
	}

	gen, err := generatorFactory(ctx, apiKey, cfg.ModelID, cfg.Timeout, log)
	if err != nil {
		return nil, "", fmt.Errorf("init gemini generator: %w", err)
	}

	liveLogger := logger.WithCommonFields(log, ProviderGemini, gen.Model(), string(language)).
		With(zap.String(logger.FieldMode, string(ModeLive)))

	matcher := gemini.NewMatcher(gen, liveLogger, gemini.MatcherOptions{
		Language:     language,
		MaxMatches:   cfg.MaxMatches,
		MaxLogLength: cfg.MaxLogLength,
	})

	return matcher, ModeLive, nil
}
