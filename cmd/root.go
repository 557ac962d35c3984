package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/project-matcher/internal/ai"
	"github.com/spigell/project-matcher/internal/catalog"
	"github.com/spigell/project-matcher/internal/filtering"
	"github.com/spigell/project-matcher/internal/logger"
	"github.com/spigell/project-matcher/internal/matching"
	"github.com/spigell/project-matcher/internal/profile"
	"github.com/spigell/project-matcher/internal/secrets"
)

const (
	app = "project-matcher"
)

type Config struct {
	AI      *AIConfig       `mapstructure:"ai"`
	Catalog *CatalogConfig  `mapstructure:"catalog"`
	Profile profile.Profile `mapstructure:"profile"`
	Server  *ServerConfig   `mapstructure:"server"`
}

type AIConfig struct {
	Provider      string        `mapstructure:"provider"`
	Language      string        `mapstructure:"language"`
	MaxMatches    int           `mapstructure:"max-matches"`
	FallbackDelay time.Duration `mapstructure:"fallback-delay"`
	Gemini        *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string        `mapstructure:"api-key" json:"-"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

type CatalogConfig struct {
	File                 string        `mapstructure:"file"`
	URL                  string        `mapstructure:"url"`
	TokenFile            string        `mapstructure:"token-file"`
	Timeout              time.Duration `mapstructure:"timeout"`
	OnlyOpen             bool          `mapstructure:"only-open"`
	ExcludeFile          string        `mapstructure:"exclude-file"`
	ExcludeOrganizations []string      `mapstructure:"exclude-organizations"`
}

type ServerConfig struct {
	Listen    string `mapstructure:"listen"`
	RateLimit int    `mapstructure:"rate-limit"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "project-matcher recommends volunteer projects of non-profits to students",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional
	_ = godotenv.Load()

	for key, envs := range map[string][]string{
		"ai.gemini.api-key":      {"GEMINI_API_KEY", "API_KEY"},
		"ai.gemini.api-key-file": {"GEMINI_API_KEY_FILE"},
		"catalog.token-file":     {"CATALOG_TOKEN_FILE"},
		"catalog.url":            {"CATALOG_URL"},
	} {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			log.Fatalf("binding %s environment variables: %v", strings.Join(envs, ", "), err)
		}
	}

	viper.SetDefault("ai.provider", matching.ProviderGemini)
	viper.SetDefault("ai.language", string(ai.DefaultLanguage))
	viper.SetDefault("ai.max-matches", 3)
	viper.SetDefault("ai.fallback-delay", "1.5s")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("catalog.only-open", true)
	viper.SetDefault("server.listen", ":8081")
	viper.SetDefault("server.rate-limit", 30)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is project-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Flags and environment are enough to run, so only an explicit or broken config file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Catalog == nil {
		config.Catalog = &CatalogConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}

	return config, nil
}

func newLogger() (*zap.Logger, error) {
	return logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
}

func newMatcher(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Matcher, matching.Mode, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != matching.ProviderGemini {
		return nil, "", fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	// viper already resolves GEMINI_API_KEY and API_KEY into Credential.
	return matching.New(ctx, matching.Config{
		Credential:     cfg.Gemini.APIKey,
		CredentialFile: cfg.Gemini.APIKeyFile,
		CredentialEnv:  []string{},
		ModelID:        cfg.Gemini.Model,
		OutputLanguage: cfg.Language,
		MaxMatches:     cfg.MaxMatches,
		Timeout:        cfg.Gemini.Timeout,
		FallbackDelay:  cfg.FallbackDelay,
		MaxLogLength:   cfg.Gemini.MaxLogLength,
	}, logger)
}

func newCatalogSource(cfg *CatalogConfig, logger *zap.Logger) (catalog.Source, error) {
	var token string
	if strings.TrimSpace(cfg.TokenFile) != "" {
		var err error
		token, err = secrets.Load(secrets.Source{Name: "catalog token", File: cfg.TokenFile})
		if err != nil {
			return nil, err
		}
	}

	return catalog.NewSource(catalog.SourceConfig{
		File:    cfg.File,
		URL:     cfg.URL,
		Token:   token,
		Timeout: cfg.Timeout,
	}, logger)
}

func filterConfig(cfg *CatalogConfig) *filtering.Config {
	return &filtering.Config{
		ExcludeFile:          cfg.ExcludeFile,
		ExcludeOrganizations: cfg.ExcludeOrganizations,
	}
}

// filterSteps returns the default pipeline with the steps switched off by configuration.
func filterSteps(cfg *CatalogConfig) []filtering.Filter {
	steps := filtering.Default()
	if !cfg.OnlyOpen {
		filtering.DisableByName(steps, filtering.OpenStatus, "catalog.only-open=false")
	}
	return steps
}
