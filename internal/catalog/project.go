package catalog

import (
	"fmt"
	"strings"

	"github.com/spigell/project-matcher/internal/ai"
)

const (
	ProjectIDField             = "ID"
	ProjectOrganizationIDField = "OrganizationID"
	ProjectOrganizationField   = "Organization"
)

const StatusOpen = "open"

type Projects struct {
	Items []*Project
}

type Organization struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Project is a normalised catalog record.
type Project struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Organization   Organization `json:"organization"`
	Summary        string       `json:"summary,omitempty"`
	Description    string       `json:"description,omitempty"`
	RequiredSkills []string     `json:"requiredSkills,omitempty"`
	Timeline       string       `json:"timeline,omitempty"`
	Commitment     string       `json:"commitment,omitempty"`
	Deliverables   []string     `json:"deliverables,omitempty"`
	Status         string       `json:"status,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	ImpactScore    float64      `json:"impactScore,omitempty"`
	Highlight      string       `json:"highlight,omitempty"`
}

// Recommendation is a match joined back to its catalog record.
type Recommendation struct {
	Project *Project        `json:"project"`
	Match   ai.ProjectMatch `json:"match"`
}

// Candidate reduces the project to the fields the matcher may see.
func (p *Project) Candidate() ai.CandidateProject {
	summary := p.Summary
	if strings.TrimSpace(summary) == "" {
		summary = p.Description
	}

	skills := make([]string, len(p.RequiredSkills))
	copy(skills, p.RequiredSkills)

	return ai.CandidateProject{
		ID:             p.ID,
		Title:          p.Title,
		Summary:        summary,
		RequiredSkills: skills,
	}
}

// IsOpen reports whether volunteers can still join. Records without a status count as open.
func (p *Project) IsOpen() bool {
	status := strings.TrimSpace(p.Status)
	return status == "" || strings.EqualFold(status, StatusOpen)
}

func (p *Project) GetStringField(name string) string {
	switch name {
	case ProjectIDField:
		return p.ID
	case ProjectOrganizationIDField:
		return p.Organization.ID
	case ProjectOrganizationField:
		return p.Organization.Name
	default:
		return ""
	}
}

func (p *Projects) Len() int {
	return len(p.Items)
}

func (p *Projects) FindByID(id string) *Project {
	for _, project := range p.Items {
		if project.ID == id {
			return project
		}
	}
	return nil
}

// Candidates returns the reduced view of every project in catalog order.
func (p *Projects) Candidates() []ai.CandidateProject {
	candidates := make([]ai.CandidateProject, 0, len(p.Items))
	for _, project := range p.Items {
		candidates = append(candidates, project.Candidate())
	}
	return candidates
}

// ResolveMatches joins matches to catalog records. Matches with unknown ids are skipped.
func (p *Projects) ResolveMatches(result ai.MatchResult) []Recommendation {
	recommendations := make([]Recommendation, 0, len(result))
	for _, match := range result {
		project := p.FindByID(match.ProjectID)
		if project == nil {
			continue
		}
		recommendations = append(recommendations, Recommendation{Project: project, Match: match})
	}
	return recommendations
}

// Exclude removes projects whose field equals one of targets, ignoring case,
// and returns the removed ids. Order is kept.
func (p *Projects) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		set[strings.ToLower(strings.TrimSpace(target))] = struct{}{}
	}

	var excluded []string
	kept := p.Items[:0]
	for _, project := range p.Items {
		if _, ok := set[strings.ToLower(project.GetStringField(name))]; ok {
			excluded = append(excluded, project.ID)
			continue
		}
		kept = append(kept, project)
	}
	p.Items = kept

	return excluded
}

// ExcludeFunc removes projects for which drop returns true and returns the removed ids.
func (p *Projects) ExcludeFunc(drop func(*Project) bool) []string {
	var excluded []string
	kept := p.Items[:0]
	for _, project := range p.Items {
		if drop(project) {
			excluded = append(excluded, project.ID)
			continue
		}
		kept = append(kept, project)
	}
	p.Items = kept

	return excluded
}

// ReportByOrganization groups projects for display.
func (p *Projects) ReportByOrganization() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, project := range p.Items {
		key := project.Organization.Name
		if project.Organization.ID != "" {
			key = fmt.Sprintf("%s (%s)", project.Organization.Name, project.Organization.ID)
		}
		report[key] = append(report[key], map[string]string{
			"id":     project.ID,
			"title":  project.Title,
			"status": project.Status,
			"skills": strings.Join(project.RequiredSkills, ", "),
		})
	}
	return report
}
