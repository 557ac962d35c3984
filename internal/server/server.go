// Package server exposes matching over HTTP.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spigell/project-matcher/internal/ai"
	"github.com/spigell/project-matcher/internal/catalog"
	"github.com/spigell/project-matcher/internal/filtering"
	"github.com/spigell/project-matcher/internal/profile"
	"go.uber.org/zap"
)

const (
	DefaultListen    = ":8081"
	DefaultRateLimit = 30

	// SessionHeader identifies the caller for in-flight gating. The client IP is used without it.
	SessionHeader = "X-Session-ID"

	defaultRequestTimeout = 2 * time.Minute
)

type Config struct {
	Listen    string
	RateLimit int
	// Language is used when a request does not name one.
	Language ai.Language
	// Mode is reported back to clients so they can tell canned matches apart.
	Mode           string
	RequestTimeout time.Duration
	Filters        filtering.Config
	// Steps builds a fresh filter pipeline per request. Nil means filtering.Default.
	Steps func() []filtering.Filter
	// Profile describes the student when a request carries neither description nor profile.
	Profile profile.Profile
}

type Server struct {
	app     *fiber.App
	cfg     Config
	matcher ai.Matcher
	source  catalog.Source
	gate    *sessionGate
	logger  *zap.Logger
}

func New(cfg Config, matcher ai.Matcher, source catalog.Source, logger *zap.Logger) *Server {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.Language == "" {
		cfg.Language = ai.DefaultLanguage
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Steps == nil {
		cfg.Steps = filtering.Default
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:     cfg,
		matcher: matcher,
		source:  source,
		gate:    newSessionGate(),
		logger:  logger,
	}

	app := fiber.New(fiber.Config{
		AppName:               "project-matcher",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	app.Use(healthcheck.New())

	api := app.Group("/api")
	api.Get("/projects", s.handleProjects)
	api.Post("/matches", rateLimiter(cfg.RateLimit, time.Minute), s.handleMatches)

	s.app = app
	return s
}

func (s *Server) Listen() error {
	s.logger.Info("server listening", zap.String("listen", s.cfg.Listen))
	return s.app.Listen(s.cfg.Listen)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func rateLimiter(max int, expiration time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		LimitReached: func(c *fiber.Ctx) error {
			return failure(c, fiber.StatusTooManyRequests, "Too many requests", "")
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
