package filtering

import (
	"context"
	"strings"

	"github.com/spigell/project-matcher/internal/catalog"
	"go.uber.org/zap"
)

type organizationsFilter struct {
	organizations []string
}

// NewExcludedOrganizations creates a filter that removes projects of configured organizations.
// Entries match either the organization id or its name.
func NewExcludedOrganizations() Filter {
	return &organizationsFilter{}
}

func (f *organizationsFilter) Name() string { return "organizations" }

func (f *organizationsFilter) Disable(string) {}

func (f *organizationsFilter) IsEnabled() bool { return true }

func (f *organizationsFilter) Validate(cfg *Config) error {
	f.organizations = nil
	if cfg == nil {
		return nil
	}
	for _, org := range cfg.ExcludeOrganizations {
		if org = strings.TrimSpace(org); org != "" {
			f.organizations = append(f.organizations, org)
		}
	}
	return nil
}

func (f *organizationsFilter) Apply(_ context.Context, deps Deps, p *catalog.Projects) (*catalog.Projects, Step, error) {
	initial := p.Len()
	if len(f.organizations) == 0 {
		return p, Step{Initial: initial, Left: initial}, nil
	}

	excluded := p.Exclude(catalog.ProjectOrganizationIDField, f.organizations)
	excluded = append(excluded, p.Exclude(catalog.ProjectOrganizationField, f.organizations)...)
	if len(excluded) > 0 {
		deps.Logger.Info("excluding projects by organizations",
			zap.Strings("excluded_organizations", f.organizations),
			zap.Strings("excluded_projects", excluded),
			zap.Int("projects_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *organizationsFilter) Status() Status {
	details := map[string]string{}
	if len(f.organizations) > 0 {
		details["organizations"] = strings.Join(f.organizations, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
