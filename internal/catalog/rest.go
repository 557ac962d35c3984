package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	ProjectsPath   = "/api/projects"
	defaultTimeout = 10 * time.Second
	userAgent      = "spigell/project-matcher"
)

// RESTSource reads the catalog from the application backend.
type RESTSource struct {
	client *resty.Client
	logger *zap.Logger
}

func NewRESTSource(baseURL, token string, timeout time.Duration, logger *zap.Logger) *RESTSource {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
	if token = strings.TrimSpace(token); token != "" {
		client.SetAuthToken(token)
	}

	return &RESTSource{client: client, logger: logger}
}

func (s *RESTSource) Projects(ctx context.Context) (*Projects, error) {
	s.logger.Debug("make request", zap.String("url", s.client.BaseURL+ProjectsPath))

	resp, err := s.client.R().
		SetContext(ctx).
		Get(ProjectsPath)
	if err != nil {
		return nil, fmt.Errorf("fetch projects: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch projects: bad status: %s", resp.Status())
	}

	var raw any
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("parse projects response: %w", err)
	}

	projects, err := decodeProjects(raw)
	if err != nil {
		return nil, fmt.Errorf("projects response: %w", err)
	}

	s.logger.Debug("catalog loaded from backend", zap.Int("projects", projects.Len()))

	return projects, nil
}
