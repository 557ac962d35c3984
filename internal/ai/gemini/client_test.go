package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeModels struct {
	mu       sync.Mutex
	calls    []modelCallRecord
	response *genai.GenerateContentResponse
	err      error
	block    bool
}

type modelCallRecord struct {
	model    string
	prompt   string
	config   *genai.GenerateContentConfig
	deadline bool
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	var prompt strings.Builder
	for _, content := range contents {
		for _, part := range content.Parts {
			prompt.WriteString(part.Text)
		}
	}
	_, hasDeadline := ctx.Deadline()
	f.calls = append(f.calls, modelCallRecord{model: model, prompt: prompt.String(), config: config, deadline: hasDeadline})
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.response, f.err
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: parts},
		}},
	}
}

func TestGeneratorSendsSchemaConstrainedRequest(t *testing.T) {
	models := &fakeModels{response: textResponse(&genai.Part{Text: `[{"projectId":"p1","reasoning":"ok","matchScore":90}]`})}
	generator := newGenerator(models, "", 0, zap.NewNop())

	schema := MatchesSchema()
	out, err := generator.GenerateJSON(context.Background(), "  prompt  ", schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `[{"projectId":"p1","reasoning":"ok","matchScore":90}]` {
		t.Fatalf("unexpected output: %s", out)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected exactly one call, got %d", len(models.calls))
	}
	call := models.calls[0]
	if call.model != DefaultModel {
		t.Fatalf("expected default model %q, got %q", DefaultModel, call.model)
	}
	if call.prompt != "prompt" {
		t.Fatalf("expected trimmed prompt, got %q", call.prompt)
	}
	if !call.deadline {
		t.Fatalf("expected request context to carry a deadline")
	}
	if call.config == nil || call.config.ResponseMIMEType != "application/json" {
		t.Fatalf("expected JSON response mime type, got %+v", call.config)
	}
	if call.config.ResponseSchema != schema {
		t.Fatalf("expected schema to be forwarded")
	}
	if call.config.Temperature == nil {
		t.Fatalf("expected temperature to be set")
	}
}

func TestGeneratorDoesNotRetry(t *testing.T) {
	apiErr := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE", Message: "overloaded"}
	models := &fakeModels{err: apiErr}
	generator := newGenerator(models, "gemini-test", time.Second, zap.NewNop())

	_, err := generator.GenerateJSON(context.Background(), "prompt", nil)
	if err == nil {
		t.Fatal("expected error")
	}

	var got genai.APIError
	if !errors.As(err, &got) || got.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected api error to be wrapped, got %v", err)
	}
	if len(models.calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(models.calls))
	}
	if models.calls[0].model != "gemini-test" {
		t.Fatalf("unexpected model: %s", models.calls[0].model)
	}
}

func TestGeneratorTimeout(t *testing.T) {
	models := &fakeModels{block: true}
	generator := newGenerator(models, "", 20*time.Millisecond, zap.NewNop())

	_, err := generator.GenerateJSON(context.Background(), "prompt", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestGeneratorCancellation(t *testing.T) {
	models := &fakeModels{block: true}
	generator := newGenerator(models, "", time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := generator.GenerateJSON(ctx, "prompt", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestGeneratorJoinsPartsAndSkipsThoughts(t *testing.T) {
	models := &fakeModels{response: textResponse(
		&genai.Part{Text: "thinking about it", Thought: true},
		&genai.Part{Text: `[{"projectId":"p1",`},
		&genai.Part{Text: `"reasoning":"fits","matchScore":70}]`},
	)}
	generator := newGenerator(models, "", 0, nil)

	out, err := generator.GenerateJSON(context.Background(), "prompt", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `[{"projectId":"p1","reasoning":"fits","matchScore":70}]` {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestGeneratorEmptyResponse(t *testing.T) {
	cases := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{name: "nil response"},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}},
		{name: "blank text", resp: textResponse(&genai.Part{Text: "  "})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			generator := newGenerator(&fakeModels{response: tc.resp}, "", 0, nil)
			if _, err := generator.GenerateJSON(context.Background(), "prompt", nil); err == nil {
				t.Fatal("expected error for empty response")
			}
		})
	}
}

func TestGeneratorRejectsEmptyPrompt(t *testing.T) {
	models := &fakeModels{}
	generator := newGenerator(models, "", 0, nil)

	if _, err := generator.GenerateJSON(context.Background(), " \n", nil); err == nil {
		t.Fatal("expected error for empty prompt")
	}
	if len(models.calls) != 0 {
		t.Fatalf("expected no network call, got %d", len(models.calls))
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", "", 0, nil); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
