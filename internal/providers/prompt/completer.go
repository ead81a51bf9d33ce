package prompt

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"autopost/internal/providers/gemini"
)

// ChatService is the slice of the openai-go chat API the completer uses.
type ChatService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAICompleter answers instructions with a single chat completion.
type OpenAICompleter struct {
	chat  ChatService
	model string
}

func NewOpenAICompleter(chat ChatService, model string) *OpenAICompleter {
	return &OpenAICompleter{chat: chat, model: model}
}

func (o *OpenAICompleter) Complete(ctx context.Context, instruction string) (string, error) {
	res, err := o.chat.New(ctx, openai.ChatCompletionNewParams{
		Model:    o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(instruction)},
	})
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("openai: completion returned no choices")
	}
	return strings.TrimSpace(res.Choices[0].Message.Content), nil
}

// GeminiCompleter answers instructions with a Gemini text model.
type GeminiCompleter struct {
	models gemini.Models
	model  string
}

func NewGeminiCompleter(models gemini.Models, model string) *GeminiCompleter {
	return &GeminiCompleter{models: models, model: model}
}

func (g *GeminiCompleter) Complete(ctx context.Context, instruction string) (string, error) {
	res, err := g.models.GenerateContent(ctx, g.model, gemini.TextPrompt(instruction), &genai.GenerateContentConfig{
		CandidateCount: 1,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(gemini.ResponseText(res))
	if text == "" {
		return "", errors.New("gemini: completion returned no text")
	}
	return text, nil
}

var (
	_ Completer = (*OpenAICompleter)(nil)
	_ Completer = (*GeminiCompleter)(nil)
)
