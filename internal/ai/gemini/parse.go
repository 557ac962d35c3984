package gemini

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/project-matcher/internal/ai"
	"github.com/spigell/project-matcher/internal/utils"
	"github.com/tidwall/gjson"
)

const rawPreviewLength = 80

// Rejection describes an array element dropped by ParseMatches.
type Rejection struct {
	Index  int
	Reason string
}

// ParseMatches converts the model answer into a MatchResult.
//
// The answer must be exactly one JSON array. Markdown fences, prose around the
// array or truncated output fail the whole response. Elements that do not have a
// non-empty string projectId and reasoning plus a numeric matchScore in [0,100]
// are dropped and reported; when nothing survives from a non-empty array the
// response is malformed. Errors are always ai.MatchingError of the malformed kind
// and never come with a partial result.
func ParseMatches(raw string) (ai.MatchResult, []Rejection, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil, nil, ai.MalformedResponse(errors.New("empty response"))
	}

	if !gjson.Valid(cleaned) {
		return nil, nil, ai.MalformedResponse(fmt.Errorf("response is not valid JSON: %q", utils.TruncateForLog(cleaned, rawPreviewLength)))
	}

	parsed := gjson.Parse(cleaned)
	if !parsed.IsArray() {
		return nil, nil, ai.MalformedResponse(fmt.Errorf("expected a JSON array, got %s", describeType(parsed)))
	}

	elements := parsed.Array()
	result := make(ai.MatchResult, 0, len(elements))
	var rejections []Rejection

	for i, element := range elements {
		match, reason := parseMatch(element)
		if reason != "" {
			rejections = append(rejections, Rejection{Index: i, Reason: reason})
			continue
		}
		result = append(result, match)
	}

	if len(elements) > 0 && len(result) == 0 {
		return nil, rejections, ai.MalformedResponse(fmt.Errorf("all %d matches are malformed, first: %s", len(elements), rejections[0].Reason))
	}

	return result, rejections, nil
}

func parseMatch(element gjson.Result) (ai.ProjectMatch, string) {
	if !element.IsObject() {
		return ai.ProjectMatch{}, "element is " + describeType(element) + ", not an object"
	}

	id := element.Get("projectId")
	if id.Type != gjson.String || strings.TrimSpace(id.Str) == "" {
		return ai.ProjectMatch{}, "projectId must be a non-empty string"
	}

	reasoning := element.Get("reasoning")
	if reasoning.Type != gjson.String || strings.TrimSpace(reasoning.Str) == "" {
		return ai.ProjectMatch{}, "reasoning must be a non-empty string"
	}

	score := element.Get("matchScore")
	if score.Type != gjson.Number {
		return ai.ProjectMatch{}, "matchScore must be a number"
	}
	value := score.Float()
	if value < ai.MinScore || value > ai.MaxScore {
		return ai.ProjectMatch{}, fmt.Sprintf("matchScore %v is outside [%d,%d]", value, ai.MinScore, ai.MaxScore)
	}

	return ai.ProjectMatch{
		ProjectID:  id.Str,
		Reasoning:  reasoning.Str,
		MatchScore: value,
	}, ""
}

func describeType(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "array"
	case r.IsObject():
		return "object"
	case r.Type == gjson.True || r.Type == gjson.False:
		return "boolean"
	default:
		return strings.ToLower(r.Type.String())
	}
}
