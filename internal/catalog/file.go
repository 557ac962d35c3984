package catalog

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
)

// FileSource reads the catalog from a YAML or JSON file.
type FileSource struct {
	path   string
	logger *zap.Logger
}

func NewFileSource(path string, logger *zap.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

func (s *FileSource) Projects(ctx context.Context) (*Projects, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	// JSON is valid YAML, one decoder serves both.
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", s.path, err)
	}

	projects, err := decodeProjects(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", s.path, err)
	}

	s.logger.Debug("catalog loaded from file",
		zap.String("path", s.path),
		zap.Int("projects", projects.Len()),
	)

	return projects, nil
}
