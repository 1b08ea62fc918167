package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/donazulmira/moradores-backend/pkg/config"
	"github.com/donazulmira/moradores-backend/pkg/logger"
	"google.golang.org/genai"
)

type stubModels struct {
	calls int
	text  string
	err   error
	model string
}

func (s *stubModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.calls++
	s.model = model
	if s.err != nil {
		return nil, s.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: s.text}}},
		}},
	}, nil
}

func TestGenerateReturnsText(t *testing.T) {
	stub := &stubModels{text: "Plantão tranquilo."}
	c := newWithModels(stub, config.AIConfig{Model: "gemini-test"}, logger.Nop())

	out, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "Plantão tranquilo." {
		t.Fatalf("unexpected text %q", out)
	}
	if stub.model != "gemini-test" || c.Model() != "gemini-test" {
		t.Fatalf("unexpected model %q", stub.model)
	}
}

func TestGenerateDefaultsModel(t *testing.T) {
	c := newWithModels(&stubModels{text: "ok"}, config.AIConfig{}, nil)
	if c.Model() != "gemini-1.5-flash" {
		t.Fatalf("unexpected default model %q", c.Model())
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	stub := &stubModels{err: errors.New("upstream 500")}
	c := newWithModels(stub, config.AIConfig{Model: "m"}, logger.Nop())

	for i := 0; i < 5; i++ {
		if _, err := c.Generate(context.Background(), "p"); err == nil {
			t.Fatal("expected upstream error")
		}
	}
	if _, err := c.Generate(context.Background(), "p"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable once the breaker opens, got %v", err)
	}
	if stub.calls != 5 {
		t.Fatalf("open breaker must not call upstream, calls=%d", stub.calls)
	}
}

func TestEmptyCompletionIsAnError(t *testing.T) {
	c := newWithModels(&stubModels{text: "  "}, config.AIConfig{}, nil)
	if _, err := c.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error for empty completion")
	}
}
