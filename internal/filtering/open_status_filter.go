package filtering

import (
	"context"

	"github.com/spigell/project-matcher/internal/catalog"
	"go.uber.org/zap"
)

// OpenStatus is the name of the open status filter.
const OpenStatus = "open_status"

type openStatusFilter struct {
	disabled bool
	reason   string
}

// NewOpenStatus creates a filter that removes projects that no longer accept volunteers.
func NewOpenStatus() Filter {
	return &openStatusFilter{}
}

func (f *openStatusFilter) Name() string { return OpenStatus }

func (f *openStatusFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *openStatusFilter) IsEnabled() bool { return !f.disabled }

func (f *openStatusFilter) Validate(*Config) error { return nil }

func (f *openStatusFilter) Apply(_ context.Context, deps Deps, p *catalog.Projects) (*catalog.Projects, Step, error) {
	initial := p.Len()

	excluded := p.ExcludeFunc(func(project *catalog.Project) bool { return !project.IsOpen() })
	if len(excluded) > 0 {
		deps.Logger.Info("excluding projects that are not open",
			zap.Strings("excluded_projects", excluded),
			zap.Int("projects_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *openStatusFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
	}
}
