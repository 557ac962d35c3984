package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// record mirrors every shape the catalog backends are known to return.
// The REST backend names the title "name" and the organization "owner".
type record struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Name           string        `json:"name"`
	Organization   *organization `json:"organization"`
	Owner          *organization `json:"owner"`
	Summary        string        `json:"summary"`
	Description    string        `json:"description"`
	RequiredSkills []string      `json:"requiredSkills"`
	Timeline       string        `json:"timeline"`
	Commitment     string        `json:"commitment"`
	Deliverables   []string      `json:"deliverables"`
	Status         string        `json:"status"`
	Tags           []string      `json:"tags"`
	ImpactScore    float64       `json:"impactScore"`
	Highlight      string        `json:"highlight"`
}

type organization struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (o *organization) normalise() Organization {
	if o == nil {
		return Organization{}
	}

	name := strings.TrimSpace(o.Name)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(o.FirstName) + " " + strings.TrimSpace(o.LastName))
	}
	if name == "" {
		name = strings.TrimSpace(o.Username)
	}

	return Organization{ID: strings.TrimSpace(o.ID), Name: name}
}

// decodeProjects normalises loosely typed records (ids may be numbers, skills may be missing).
// Records without an id are rejected.
func decodeProjects(raw any) (*Projects, error) {
	items, err := recordList(raw)
	if err != nil {
		return nil, err
	}

	var records []*record
	cfg := &mapstructure.DecoderConfig{
		Result:           &records,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncType(organizationFromString),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}

	projects := &Projects{Items: make([]*Project, 0, len(records))}
	seen := make(map[string]struct{}, len(records))
	for idx, r := range records {
		if r == nil {
			continue
		}
		project := r.normalise()
		if project.ID == "" {
			return nil, fmt.Errorf("project #%d has no id", idx)
		}
		if _, dup := seen[project.ID]; dup {
			return nil, fmt.Errorf("duplicate project id %q", project.ID)
		}
		seen[project.ID] = struct{}{}
		projects.Items = append(projects.Items, project)
	}

	return projects, nil
}

func (r *record) normalise() *Project {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = strings.TrimSpace(r.Name)
	}

	org := r.Organization
	if org == nil {
		org = r.Owner
	}

	return &Project{
		ID:             strings.TrimSpace(r.ID),
		Title:          title,
		Organization:   org.normalise(),
		Summary:        strings.TrimSpace(r.Summary),
		Description:    strings.TrimSpace(r.Description),
		RequiredSkills: r.RequiredSkills,
		Timeline:       r.Timeline,
		Commitment:     r.Commitment,
		Deliverables:   r.Deliverables,
		Status:         strings.TrimSpace(r.Status),
		Tags:           r.Tags,
		ImpactScore:    r.ImpactScore,
		Highlight:      r.Highlight,
	}
}

// organizationFromString lets a plain organization name stand in for the object.
func organizationFromString(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	if to != reflect.TypeOf(organization{}) && to != reflect.TypeOf(&organization{}) {
		return data, nil
	}
	return map[string]any{"name": data}, nil
}

// recordList accepts a bare list or an object wrapping it under "projects", "items" or "content".
func recordList(raw any) ([]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case map[string]any:
		for _, key := range []string{"projects", "items", "content"} {
			if list, ok := v[key]; ok {
				return recordList(list)
			}
		}
		return nil, errors.New("object has no projects list")
	default:
		return nil, fmt.Errorf("unexpected catalog payload %T", raw)
	}
}
