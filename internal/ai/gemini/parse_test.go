package gemini

import (
	"errors"
	"testing"

	"github.com/spigell/project-matcher/internal/ai"
)

func TestParseMatches(t *testing.T) {
	raw := "\n [\n" +
		`{"projectId":"p1","reasoning":"Your React skills fit.","matchScore":95},` +
		`{"projectId":"p2","reasoning":"Social impact focus.","matchScore":85.5}` +
		"\n] \n"

	result, rejections, err := ParseMatches(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rejections) != 0 {
		t.Fatalf("unexpected rejections: %+v", rejections)
	}

	expected := ai.MatchResult{
		{ProjectID: "p1", Reasoning: "Your React skills fit.", MatchScore: 95},
		{ProjectID: "p2", Reasoning: "Social impact focus.", MatchScore: 85.5},
	}
	if len(result) != len(expected) {
		t.Fatalf("expected %d matches, got %d", len(expected), len(result))
	}
	for i := range expected {
		if result[i] != expected[i] {
			t.Fatalf("match %d: expected %+v, got %+v", i, expected[i], result[i])
		}
	}
}

func TestParseMatchesEmptyArray(t *testing.T) {
	result, _, err := ParseMatches("[]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || len(result) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", result)
	}
}

func TestParseMatchesMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":         `not json`,
		"quoted string":    `"not json"`,
		"empty":            "",
		"whitespace":       " \n\t ",
		"truncated":        `[{"projectId":"p1","reasoning":"ok","matchScore":9`,
		"markdown fenced":  "```json\n[{\"projectId\":\"p1\",\"reasoning\":\"ok\",\"matchScore\":90}]\n```",
		"prose around":     `Here you go: [{"projectId":"p1","reasoning":"ok","matchScore":90}]`,
		"object":           `{"projectId":"p1","reasoning":"ok","matchScore":90}`,
		"number":           `42`,
		"all elements bad": `[{"projectId":1,"reasoning":"ok","matchScore":90},"p2"]`,
		"two arrays":       `[] []`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			result, _, err := ParseMatches(raw)
			if err == nil {
				t.Fatalf("expected error for %q", raw)
			}
			if !errors.Is(err, ai.ErrMatchingFailed) {
				t.Fatalf("expected ErrMatchingFailed, got %v", err)
			}
			if ai.KindOf(err) != ai.FailureMalformed {
				t.Fatalf("expected malformed kind, got %q", ai.KindOf(err))
			}
			if result != nil {
				t.Fatalf("expected no partial result, got %+v", result)
			}
		})
	}
}

func TestParseMatchesDropsMalformedElements(t *testing.T) {
	raw := `[
		{"projectId":"p1","reasoning":"good","matchScore":90},
		{"projectId":"","reasoning":"empty id","matchScore":80},
		{"projectId":"p3","reasoning":"   ","matchScore":80},
		{"projectId":"p4","reasoning":"string score","matchScore":"80"},
		{"projectId":"p5","reasoning":"too high","matchScore":120},
		{"projectId":"p6","reasoning":"negative","matchScore":-1},
		{"projectId":"p7","reasoning":"missing score"},
		null,
		{"projectId":"p8","reasoning":"edge","matchScore":0}
	]`

	result, rejections, err := ParseMatches(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ids := result.IDs(); len(ids) != 2 || ids[0] != "p1" || ids[1] != "p8" {
		t.Fatalf("unexpected surviving ids: %v", ids)
	}

	expectedIndexes := []int{1, 2, 3, 4, 5, 6, 7}
	if len(rejections) != len(expectedIndexes) {
		t.Fatalf("expected %d rejections, got %+v", len(expectedIndexes), rejections)
	}
	for i, idx := range expectedIndexes {
		if rejections[i].Index != idx || rejections[i].Reason == "" {
			t.Fatalf("rejection %d: expected index %d with reason, got %+v", i, idx, rejections[i])
		}
	}
}
