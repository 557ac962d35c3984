package profile

import (
	"testing"

	"github.com/spigell/project-matcher/internal/ai"
)

func TestDescribe(t *testing.T) {
	cases := []struct {
		name     string
		profile  Profile
		lang     ai.Language
		expected string
	}{
		{
			name: "full profile",
			profile: Profile{
				FieldOfStudy: "Computer Science",
				Skills:       []string{"React", "Node.js"},
				Interests:    []string{"education", "social impact"},
			},
			lang:     ai.LanguageEnglish,
			expected: "I am a Computer Science student. My key skills include: React, Node.js. I am interested in education, social impact.",
		},
		{
			name:     "defaults",
			profile:  Profile{Skills: []string{" ", ""}},
			lang:     ai.LanguageEnglish,
			expected: "I am a student. My key skills include: general skills. I am interested in general interests.",
		},
		{
			name:     "university",
			profile:  Profile{FieldOfStudy: "Design", University: "CTU", Skills: []string{"Figma"}},
			lang:     ai.LanguageEnglish,
			expected: "I am a Design student at CTU. My key skills include: Figma. I am interested in general interests.",
		},
		{
			name:     "explicit description wins",
			profile:  Profile{Description: "  I love open data.  ", FieldOfStudy: "Math"},
			lang:     ai.LanguageCzech,
			expected: "I love open data.",
		},
		{
			name:     "czech",
			profile:  Profile{FieldOfStudy: "informatika", Interests: []string{"vzdělávání"}},
			lang:     ai.LanguageCzech,
			expected: "Jsem student oboru informatika. Mezi mé klíčové dovednosti patří: obecné dovednosti. Zajímám se o vzdělávání.",
		},
		{
			name:     "unknown language falls back to english",
			profile:  Profile{},
			lang:     ai.Language("de"),
			expected: "I am a student. My key skills include: general skills. I am interested in general interests.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.profile.Describe(tc.lang); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
