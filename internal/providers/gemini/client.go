// Package gemini wraps the genai SDK behind a small interface so callers can be tested with stubs.
package gemini

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("gemini: api key is required")

// Models is the subset of *genai.Models the service calls.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
	GenerateImages(ctx context.Context, model, prompt string,
		config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Options configures the Gemini Developer API client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewModels builds a genai client for the Gemini Developer API and returns its Models service.
func NewModels(ctx context.Context, opts Options) (Models, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &modelsWrapper{models: client.Models}, nil
}

type modelsWrapper struct {
	models *genai.Models
}

func (m *modelsWrapper) GenerateContent(ctx context.Context, model string, contents []*genai.Content,
	config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.models.GenerateContent(ctx, model, contents, config)
}

func (m *modelsWrapper) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content,
	config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return m.models.GenerateContentStream(ctx, model, contents, config)
}

func (m *modelsWrapper) GenerateImages(ctx context.Context, model, prompt string,
	config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	return m.models.GenerateImages(ctx, model, prompt, config)
}

// TextPrompt wraps a single user text turn.
func TextPrompt(text string) []*genai.Content {
	return []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
}

// ImagePrompt wraps inline image bytes followed by a text instruction as one user turn.
func ImagePrompt(data []byte, mimeType, text string) []*genai.Content {
	parts := []*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText(text),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// ResponseText returns the concatenated text parts of the first candidate.
func ResponseText(res *genai.GenerateContentResponse) string {
	if res == nil {
		return ""
	}
	return res.Text()
}
