// Package profile turns what is known about a student into the free-text
// description the matcher works with.
package profile

import (
	"strings"

	"github.com/spigell/project-matcher/internal/ai"
)

type Profile struct {
	// Description wins over everything else when set.
	Description  string   `mapstructure:"description" json:"description,omitempty"`
	FieldOfStudy string   `mapstructure:"field-of-study" json:"fieldOfStudy,omitempty"`
	University   string   `mapstructure:"university" json:"university,omitempty"`
	Skills       []string `mapstructure:"skills" json:"skills,omitempty"`
	Interests    []string `mapstructure:"interests" json:"interests,omitempty"`
}

type phrasing struct {
	student          string
	studentOf        string
	at               string
	skills           string
	interests        string
	defaultSkills    string
	defaultInterests string
}

var phrasings = map[ai.Language]phrasing{
	ai.LanguageEnglish: {
		student:          "I am a student",
		studentOf:        "I am a %s student",
		at:               " at ",
		skills:           "My key skills include: ",
		interests:        "I am interested in ",
		defaultSkills:    "general skills",
		defaultInterests: "general interests",
	},
	ai.LanguageCzech: {
		student:          "Jsem student",
		studentOf:        "Jsem student oboru %s",
		at:               " na ",
		skills:           "Mezi mé klíčové dovednosti patří: ",
		interests:        "Zajímám se o ",
		defaultSkills:    "obecné dovednosti",
		defaultInterests: "obecné zájmy",
	},
}

// Describe returns the explicit description or synthesizes one, for example
// "I am a Computer Science student. My key skills include: React, Node.js. I am interested in education, social impact."
func (p Profile) Describe(lang ai.Language) string {
	if description := strings.TrimSpace(p.Description); description != "" {
		return description
	}

	ph, ok := phrasings[lang]
	if !ok {
		ph = phrasings[ai.DefaultLanguage]
	}

	var b strings.Builder
	if field := strings.TrimSpace(p.FieldOfStudy); field != "" {
		b.WriteString(strings.Replace(ph.studentOf, "%s", field, 1))
	} else {
		b.WriteString(ph.student)
	}
	if university := strings.TrimSpace(p.University); university != "" {
		b.WriteString(ph.at)
		b.WriteString(university)
	}
	b.WriteString(". ")

	b.WriteString(ph.skills)
	b.WriteString(joinOr(p.Skills, ph.defaultSkills))
	b.WriteString(". ")

	b.WriteString(ph.interests)
	b.WriteString(joinOr(p.Interests, ph.defaultInterests))
	b.WriteString(".")

	return b.String()
}

func joinOr(items []string, fallback string) string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			cleaned = append(cleaned, item)
		}
	}
	if len(cleaned) == 0 {
		return fallback
	}
	return strings.Join(cleaned, ", ")
}
