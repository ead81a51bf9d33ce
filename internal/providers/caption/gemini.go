package caption

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"autopost/internal/providers/gemini"
)

// Gemini captions with a Gemini vision model. Streaming accumulates chunk text in arrival order.
type Gemini struct {
	models    gemini.Models
	model     string
	streaming bool
}

func NewGemini(models gemini.Models, model string, streaming bool) *Gemini {
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.5-flash"
	}
	return &Gemini{models: models, model: model, streaming: streaming}
}

func (g *Gemini) Describe(ctx context.Context, data []byte, mimeType, instruction string) (string, error) {
	contents := gemini.ImagePrompt(data, mimeType, instruction)
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "text/plain"}
	if !g.streaming {
		res, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			return "", err
		}
		return gemini.ResponseText(res), nil
	}

	var sb strings.Builder
	for chunk, err := range g.models.GenerateContentStream(ctx, g.model, contents, cfg) {
		if err != nil {
			return "", err
		}
		sb.WriteString(gemini.ResponseText(chunk))
	}
	return sb.String(), nil
}

var _ Provider = (*Gemini)(nil)
