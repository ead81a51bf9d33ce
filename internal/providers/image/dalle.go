package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"autopost/internal/domain"
)

// ImageService is the slice of the openai-go images API the backend uses.
type ImageService interface {
	Generate(ctx context.Context, body openai.ImageGenerateParams, opts ...option.RequestOption) (*openai.ImagesResponse, error)
}

// DallE is the prompt-to-image backend. The image is retrieved by a plain GET of the returned URL.
type DallE struct {
	images     ImageService
	model      string
	httpClient *http.Client
}

func NewDallE(images ImageService, model string, httpClient *http.Client) *DallE {
	if strings.TrimSpace(model) == "" {
		model = string(openai.ImageModelDallE3)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &DallE{images: images, model: model, httpClient: httpClient}
}

func (d *DallE) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageArtifact, error) {
	res, err := d.images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         req.Text(),
		Model:          openai.ImageModel(d.model),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize1024x1024,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: generate image: %w", err)
	}
	if res == nil || len(res.Data) == 0 {
		return nil, fmt.Errorf("openai: %w", domain.ErrNoArtifactProduced)
	}

	img := res.Data[0]
	var data []byte
	switch {
	case strings.TrimSpace(img.URL) != "":
		data, err = d.download(ctx, img.URL)
	case img.B64JSON != "":
		data, err = base64.StdEncoding.DecodeString(img.B64JSON)
	default:
		return nil, fmt.Errorf("openai: %w", domain.ErrNoArtifactProduced)
	}
	if err != nil {
		return nil, err
	}
	return newArtifact(data, false)
}

func (d *DallE) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSpace(imageURL), nil)
	if err != nil {
		return nil, fmt.Errorf("openai: build download request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read image: %w", err)
	}
	return data, nil
}

var _ Generator = (*DallE)(nil)
