package server

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spigell/project-matcher/internal/ai"
	"github.com/spigell/project-matcher/internal/catalog"
	"github.com/spigell/project-matcher/internal/filtering"
	"github.com/spigell/project-matcher/internal/logger"
	"github.com/spigell/project-matcher/internal/profile"
	"go.uber.org/zap"
)

const catalogUnavailable = "Projects are unavailable right now. Please try again later."

type matchRequest struct {
	Description string           `json:"description"`
	Profile     *profile.Profile `json:"profile"`
	Language    string           `json:"language"`
}

type matchMeta struct {
	RequestID  string `json:"requestId"`
	Mode       string `json:"mode,omitempty"`
	Candidates int    `json:"candidates"`
}

func (s *Server) handleProjects(c *fiber.Ctx) error {
	projects, err := s.loadProjects(c.UserContext(), s.logger)
	if err != nil {
		s.logger.Error("loading projects failed", zap.Error(err))
		return failure(c, fiber.StatusServiceUnavailable, catalogUnavailable, "")
	}

	return success(c, "", fiber.Map{"total": projects.Len()}, projects.Items)
}

func (s *Server) handleMatches(c *fiber.Ctx) error {
	requestID := uuid.NewString()
	log := logger.WithRequestID(s.logger, requestID)

	// every field is optional, so an empty body falls back to the configured profile
	var req matchRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return failure(c, fiber.StatusBadRequest, "invalid request body", requestID)
		}
	}

	lang := s.cfg.Language
	if strings.TrimSpace(req.Language) != "" {
		parsed, err := ai.ParseLanguage(req.Language)
		if err != nil {
			return failure(c, fiber.StatusBadRequest, err.Error(), requestID)
		}
		lang = parsed
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		p := s.cfg.Profile
		if req.Profile != nil {
			p = *req.Profile
		}
		description = p.Describe(lang)
	}

	session := strings.TrimSpace(c.Get(SessionHeader))
	if session == "" {
		session = c.IP()
	}
	if !s.gate.acquire(session) {
		log.Info("matching already in progress for session")
		return failure(c, fiber.StatusConflict, "A matching request is already in progress.", requestID)
	}
	defer s.gate.release(session)

	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.RequestTimeout)
	defer cancel()

	projects, err := s.loadProjects(ctx, log)
	if err != nil {
		log.Error("loading projects failed", zap.Error(err))
		return failure(c, fiber.StatusServiceUnavailable, catalogUnavailable, requestID)
	}

	result, err := s.matcher.FindMatches(ctx, description, projects.Candidates())
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if errors.Is(err, ai.ErrMatchingFailed) {
			fields = append(fields, zap.String("failure_kind", string(ai.KindOf(err))))
		}
		log.Error("matching failed", fields...)
		return failure(c, fiber.StatusBadGateway, ai.FailureMessage(lang), requestID)
	}

	recommendations := projects.ResolveMatches(result)
	log.Info("matching finished",
		zap.Int("candidates", projects.Len()),
		zap.Int("matches", len(result)),
		zap.Int("resolved", len(recommendations)),
	)

	return success(c, "", matchMeta{
		RequestID:  requestID,
		Mode:       s.cfg.Mode,
		Candidates: projects.Len(),
	}, recommendations)
}

func (s *Server) loadProjects(ctx context.Context, log *zap.Logger) (*catalog.Projects, error) {
	projects, err := s.source.Projects(ctx)
	if err != nil {
		return nil, err
	}

	filters := s.cfg.Filters
	steps := s.cfg.Steps()
	projects, err = filtering.Run(ctx, &filters, filtering.Deps{Logger: log}, steps, projects)
	if err != nil {
		return nil, err
	}

	log.Debug("catalog filtered", zap.Any("filters", filtering.Describe(steps)), zap.Int("projects", projects.Len()))
	return projects, nil
}
