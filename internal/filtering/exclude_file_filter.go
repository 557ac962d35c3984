package filtering

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/project-matcher/internal/catalog"
	"go.uber.org/zap"
)

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes projects the user dismissed earlier.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, p *catalog.Projects) (*catalog.Projects, Step, error) {
	initial := p.Len()
	if f.path == "" {
		return p, Step{Initial: initial, Left: initial}, nil
	}

	dismissed, err := catalog.LoadDismissed(f.path)
	if err != nil {
		return p, Step{}, fmt.Errorf("getting dismissed projects from file: %w", err)
	}

	removed := p.Exclude(catalog.ProjectIDField, dismissed.IDs())
	if len(removed) > 0 {
		deps.Logger.Info("excluding projects based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_projects", removed),
			zap.Int("projects_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(removed), Left: p.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
