package catalog

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// DismissedProjects is the list of projects the user does not want to see again.
type DismissedProjects struct {
	Items []*DismissedProject `yaml:"items"`
}

type DismissedProject struct {
	ID           string    `yaml:"id"`
	Title        string    `yaml:"title,omitempty"`
	Organization string    `yaml:"organization,omitempty"`
	DismissedAt  time.Time `yaml:"dismissed_at"`
}

// LoadDismissed reads the dismissed list. A missing or empty file is an empty list.
func LoadDismissed(path string) (*DismissedProjects, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &DismissedProjects{}, nil
	}
	if err != nil {
		return nil, err
	}

	var dismissed DismissedProjects
	if err := yaml.Unmarshal(data, &dismissed); err != nil {
		return nil, fmt.Errorf("parse dismissed projects %s: %w", path, err)
	}
	return &dismissed, nil
}

func (d *DismissedProjects) Add(project *Project) {
	for _, item := range d.Items {
		if item.ID == project.ID {
			return
		}
	}
	d.Items = append(d.Items, &DismissedProject{
		ID:           project.ID,
		Title:        project.Title,
		Organization: project.Organization.Name,
		DismissedAt:  time.Now().UTC(),
	})
}

func (d *DismissedProjects) IDs() []string {
	ids := make([]string, 0, len(d.Items))
	for _, item := range d.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (d *DismissedProjects) ToFile(path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
