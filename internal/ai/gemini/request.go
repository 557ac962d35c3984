package gemini

import (
	"bytes"
	"embed"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spigell/project-matcher/internal/ai"
	"google.golang.org/genai"
)

const DefaultMaxMatches = 3

const (
	placeholderDescription = "{{USER_DESCRIPTION}}"
	placeholderProjects    = "{{PROJECTS_JSON}}"
	placeholderCount       = "{{MATCH_COUNT}}"
)

//go:embed prompts/*.md
var prompts embed.FS

// Request is a prompt plus the schema the model answer has to follow.
type Request struct {
	Prompt string
	Schema *genai.Schema
	// ProjectsJSON is the candidate list exactly as embedded into Prompt.
	ProjectsJSON string
}

// BuildRequest renders the matching prompt for the given language. It never fails:
// an empty description or project list still yields a usable request.
func BuildRequest(description string, projects []ai.CandidateProject, lang ai.Language, maxMatches int) *Request {
	projectsJSON := encodeCandidates(projects)

	// A single pass never rescans substituted text, so user input cannot expand placeholders.
	prompt := strings.NewReplacer(
		placeholderDescription, strings.TrimSpace(description),
		placeholderCount, matchCount(maxMatches),
		placeholderProjects, projectsJSON,
	).Replace(promptTemplate(lang))

	return &Request{
		Prompt:       prompt,
		Schema:       MatchesSchema(),
		ProjectsJSON: projectsJSON,
	}
}

// MatchesSchema declares the answer shape: an array of {projectId, reasoning, matchScore}.
func MatchesSchema() *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Description: "Recommended projects ordered from the best fit.",
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"projectId": {
					Type:        genai.TypeString,
					Description: "The id of the recommended project, copied from the project list.",
				},
				"reasoning": {
					Type:        genai.TypeString,
					Description: "Why the project fits the student's skills and interests.",
				},
				"matchScore": {
					Type:        genai.TypeNumber,
					Description: "How well the project fits, from 0 to 100.",
					Minimum:     genai.Ptr(float64(ai.MinScore)),
					Maximum:     genai.Ptr(float64(ai.MaxScore)),
				},
			},
			Required:         []string{"projectId", "reasoning", "matchScore"},
			PropertyOrdering: []string{"projectId", "reasoning", "matchScore"},
		},
	}
}

func promptTemplate(lang ai.Language) string {
	name := "prompts/en.md"
	if lang == ai.LanguageCzech {
		name = "prompts/cs.md"
	}

	data, err := prompts.ReadFile(name)
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return "Student:\n" + placeholderDescription + "\n\nProjects:\n" + placeholderProjects +
			"\n\nPick the top " + placeholderCount + " projects. Return only a JSON array of {projectId, reasoning, matchScore}."
	}

	return string(data)
}

// encodeCandidates serializes the reduced project list. Nil slices become
// empty arrays so the prompt never contains null.
func encodeCandidates(projects []ai.CandidateProject) string {
	reduced := make([]ai.CandidateProject, 0, len(projects))
	for _, project := range projects {
		if project.RequiredSkills == nil {
			project.RequiredSkills = []string{}
		}
		reduced = append(reduced, project)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(reduced); err != nil {
		// CandidateProject holds only strings; encoding cannot fail.
		return "[]"
	}

	return strings.TrimSpace(buf.String())
}

func matchCount(maxMatches int) string {
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}

	switch maxMatches {
	case 1:
		return "1"
	case 2:
		return "1-2"
	default:
		return "2-" + strconv.Itoa(maxMatches)
	}
}
