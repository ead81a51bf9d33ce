// Package stability talks to the Stability AI REST generation API.
package stability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"autopost/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("stability: api key is required")

// Finish reasons reported per artifact.
const (
	FinishSuccess         = "SUCCESS"
	FinishContentFiltered = "CONTENT_FILTERED"
	FinishError           = "ERROR"
)

// Options configures the Stability client.
type Options struct {
	APIKey         string
	BaseURL        string
	Engine         string
	Width          int
	Height         int
	CFGScale       float64
	Steps          int
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs text-to-image calls.
type Client struct {
	apiKey     string
	baseURL    string
	engine     string
	width      int
	height     int
	cfgScale   float64
	steps      int
	httpClient *http.Client
	logger     *infra.Logger
}

// TextPrompt is one weighted prompt. Negative weights steer the sampler away from the text.
type TextPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// Request captures the inputs for one generation call.
type Request struct {
	Prompts []TextPrompt
	Samples int
	Seed    uint32
}

// Artifact is one entry of the response's artifacts array.
type Artifact struct {
	Base64       string `json:"base64"`
	Seed         uint32 `json:"seed"`
	FinishReason string `json:"finishReason"`
}

// Filtered reports whether moderation suppressed this artifact.
func (a Artifact) Filtered() bool {
	return a.FinishReason == FinishContentFiltered
}

type generationRequest struct {
	TextPrompts []TextPrompt `json:"text_prompts"`
	CFGScale    float64      `json:"cfg_scale,omitempty"`
	Height      int          `json:"height,omitempty"`
	Width       int          `json:"width,omitempty"`
	Samples     int          `json:"samples,omitempty"`
	Steps       int          `json:"steps,omitempty"`
	Seed        uint32       `json:"seed,omitempty"`
}

type errorResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// NewClient constructs a client with defaults matching the SDXL 1024 engine.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.stability.ai"
	}
	engine := strings.TrimSpace(opts.Engine)
	if engine == "" {
		engine = "stable-diffusion-xl-1024-v1-0"
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 1024
	}
	cfgScale := opts.CFGScale
	if cfgScale <= 0 {
		cfgScale = 7
	}
	steps := opts.Steps
	if steps <= 0 {
		steps = 30
	}
	logger := opts.Logger
	if logger == nil {
		l := zerolog.New(io.Discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		engine:     engine,
		width:      width,
		height:     height,
		cfgScale:   cfgScale,
		steps:      steps,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Engine returns the configured engine identifier.
func (c *Client) Engine() string {
	return c.engine
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Generate posts the request and yields artifacts as they are decoded from the response body.
// Transport and protocol failures are yielded once as an error, after which iteration stops.
func (c *Client) Generate(ctx context.Context, req Request) iter.Seq2[Artifact, error] {
	return func(yield func(Artifact, error) bool) {
		body, err := c.send(ctx, req)
		if err != nil {
			yield(Artifact{}, err)
			return
		}
		defer body.Close()

		dec := json.NewDecoder(body)
		found, err := seekArtifacts(dec)
		if err != nil {
			yield(Artifact{}, err)
			return
		}
		if !found {
			c.logger.Debug().Str("engine", c.engine).Msg("stability: response has no artifacts field")
			return
		}
		count := 0
		for dec.More() {
			var a Artifact
			if err := dec.Decode(&a); err != nil {
				yield(Artifact{}, fmt.Errorf("stability: decode artifact: %w", err))
				return
			}
			count++
			c.logger.Debug().
				Str("engine", c.engine).
				Uint32("seed", a.Seed).
				Str("finish_reason", a.FinishReason).
				Msg("stability: artifact received")
			if !yield(a, nil) {
				return
			}
		}
		if count == 0 {
			c.logger.Debug().Str("engine", c.engine).Msg("stability: response carried no artifacts")
		}
	}
}

func (c *Client) send(ctx context.Context, req Request) (io.ReadCloser, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	var prompts []TextPrompt
	for _, p := range req.Prompts {
		if text := strings.TrimSpace(p.Text); text != "" {
			prompts = append(prompts, TextPrompt{Text: text, Weight: p.Weight})
		}
	}
	if len(prompts) == 0 {
		return nil, errors.New("stability: prompt is required")
	}
	samples := req.Samples
	if samples <= 0 {
		samples = 1
	}
	payload := generationRequest{
		TextPrompts: prompts,
		CFGScale:    c.cfgScale,
		Height:      c.height,
		Width:       c.width,
		Samples:     samples,
		Steps:       c.steps,
		Seed:        req.Seed,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("stability: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v1/generation/%s/text-to-image", c.baseURL, c.engine)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("stability: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("stability: http request: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var decoded errorResponse
		if err := json.Unmarshal(detail, &decoded); err == nil && decoded.Message != "" {
			return nil, fmt.Errorf("stability: %s (%s)", decoded.Message, decoded.Name)
		}
		return nil, fmt.Errorf("stability: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return resp.Body, nil
}

// seekArtifacts advances dec to the first element of the top-level "artifacts" array.
// It reports false when the object has no such field.
func seekArtifacts(dec *json.Decoder) (bool, error) {
	tok, err := dec.Token()
	if err != nil {
		return false, fmt.Errorf("stability: decode response: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return false, errors.New("stability: response is not an object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return false, fmt.Errorf("stability: decode response: %w", err)
		}
		key, _ := tok.(string)
		if key != "artifacts" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return false, fmt.Errorf("stability: decode response: %w", err)
			}
			continue
		}
		tok, err = dec.Token()
		if err != nil {
			return false, fmt.Errorf("stability: decode artifacts: %w", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			return false, errors.New("stability: artifacts is not an array")
		}
		return true, nil
	}
	return false, nil
}
