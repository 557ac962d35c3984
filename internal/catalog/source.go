package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Source provides the full project catalog.
type Source interface {
	Projects(ctx context.Context) (*Projects, error)
}

// SourceConfig selects a catalog backend. URL wins over File.
type SourceConfig struct {
	File    string
	URL     string
	Token   string
	Timeout time.Duration
}

func NewSource(cfg SourceConfig, logger *zap.Logger) (Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch {
	case strings.TrimSpace(cfg.URL) != "":
		return NewRESTSource(cfg.URL, cfg.Token, cfg.Timeout, logger), nil
	case strings.TrimSpace(cfg.File) != "":
		return NewFileSource(cfg.File, logger), nil
	default:
		return nil, errors.New("catalog file or url must be configured")
	}
}
