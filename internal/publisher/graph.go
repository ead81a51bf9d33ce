// Package publisher posts staged images to the social platforms over their Graph APIs.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"autopost/internal/domain"
)

// Publisher posts one staged asset with its caption.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, asset domain.StagedAsset, caption domain.Caption) error
}

// APIError is a non-2xx Graph response.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph %s: status %d: %s", e.Endpoint, e.Status, e.Body)
}

// GraphOptions configures a Graph API client.
type GraphOptions struct {
	BaseURL     string
	AccessToken string
	HTTPClient  *http.Client
	// MinInterval spaces consecutive calls; zero disables pacing.
	MinInterval time.Duration
}

// graphClient issues form-encoded POSTs and decodes the returned id.
type graphClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func newGraphClient(opts GraphOptions) *graphClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}
	return &graphClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      strings.TrimSpace(opts.AccessToken),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

type graphResponse struct {
	ID string `json:"id"`
}

func (g *graphClient) post(ctx context.Context, path string, form url.Values) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	form.Set("access_token", g.token)
	endpoint := g.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("graph: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("graph %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("graph %s: read response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{Endpoint: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	var decoded graphResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("graph %s: decode response: %w", path, err)
	}
	if decoded.ID == "" {
		return "", fmt.Errorf("graph %s: response has no id: %s", path, strings.TrimSpace(string(raw)))
	}
	return decoded.ID, nil
}

// twoPhase creates a container and publishes it.
func (g *graphClient) twoPhase(ctx context.Context, createPath, publishPath string, fields url.Values) (domain.PublishResult, error) {
	id, err := g.post(ctx, createPath, fields)
	if err != nil {
		return domain.PublishResult{}, err
	}
	result := domain.PublishResult{MediaID: id, Phase: domain.PublishPhaseCreated}
	if _, err := g.post(ctx, publishPath, url.Values{"creation_id": {id}}); err != nil {
		return result, err
	}
	result.Phase = domain.PublishPhasePublished
	return result, nil
}

func publishError(platform, step string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", domain.ErrPublishFailure, platform, step, err)
}
