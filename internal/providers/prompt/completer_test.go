package prompt

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"
)

type stubChat struct {
	res  *openai.ChatCompletion
	err  error
	body openai.ChatCompletionNewParams
}

func (s *stubChat) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	s.body = body
	return s.res, s.err
}

func TestOpenAICompleter(t *testing.T) {
	chat := &stubChat{res: &openai.ChatCompletion{Choices: []openai.ChatCompletionChoice{{
		Message: openai.ChatCompletionMessage{Content: " The Northern Lights over Tromsø "},
	}}}}
	c := NewOpenAICompleter(chat, "gpt-4o-mini")

	got, err := c.Complete(context.Background(), "pick one natural phenomenon in Scandinavia, describe briefly")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got != "The Northern Lights over Tromsø" {
		t.Fatalf("completion = %q", got)
	}
	if chat.body.Model != "gpt-4o-mini" || len(chat.body.Messages) != 1 {
		t.Fatalf("unexpected request: model=%q messages=%d", chat.body.Model, len(chat.body.Messages))
	}
}

func TestOpenAICompleterNoChoices(t *testing.T) {
	c := NewOpenAICompleter(&stubChat{res: &openai.ChatCompletion{}}, "gpt-4o-mini")
	if _, err := c.Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

type stubModels struct {
	res *genai.GenerateContentResponse
	err error
}

func (s *stubModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return s.res, s.err
}

func (s *stubModels) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {}
}

func (s *stubModels) GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	return nil, errors.New("not implemented")
}

func TestGeminiCompleter(t *testing.T) {
	models := &stubModels{res: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: genai.NewContentFromText("Marie Curie, physicist", genai.RoleModel),
	}}}}
	c := NewGeminiCompleter(models, "gemini-2.5-flash")

	got, err := c.Complete(context.Background(), "pick one scientist in Europe, describe briefly")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got != "Marie Curie, physicist" {
		t.Fatalf("completion = %q", got)
	}
}

func TestGeminiCompleterPropagatesError(t *testing.T) {
	boom := errors.New("deadline exceeded")
	c := NewGeminiCompleter(&stubModels{err: boom}, "gemini-2.5-flash")
	if _, err := c.Complete(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected error to propagate, got %v", err)
	}
}
