package image

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"autopost/internal/domain"
	"autopost/internal/providers/gemini"
)

// Imagen is the image-synthesis-model backend: one square JPEG per call, adult persons allowed.
type Imagen struct {
	models gemini.Models
	model  string
}

func NewImagen(models gemini.Models, model string) *Imagen {
	if strings.TrimSpace(model) == "" {
		model = "imagen-3.0-generate-002"
	}
	return &Imagen{models: models, model: model}
}

func (g *Imagen) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageArtifact, error) {
	res, err := g.models.GenerateImages(ctx, g.model, req.Text(), &genai.GenerateImagesConfig{
		NumberOfImages:   1,
		AspectRatio:      "1:1",
		PersonGeneration: genai.PersonGenerationAllowAdult,
		OutputMIMEType:   string(domain.MIMETypeJPEG),
		IncludeRAIReason: true,
	})
	if err != nil {
		return nil, fmt.Errorf("imagen: generate images: %w", err)
	}
	if res == nil || len(res.GeneratedImages) == 0 {
		return nil, fmt.Errorf("imagen: %w", domain.ErrNoArtifactProduced)
	}

	filtered := false
	for _, generated := range res.GeneratedImages {
		if generated == nil {
			continue
		}
		if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			if generated.RAIFilteredReason != "" {
				filtered = true
			}
			continue
		}
		return newArtifact(generated.Image.ImageBytes, filtered)
	}
	if filtered {
		return nil, fmt.Errorf("imagen: %w: every candidate was %w", domain.ErrNoArtifactProduced, domain.ErrContentFiltered)
	}
	return nil, fmt.Errorf("imagen: %w", domain.ErrNoArtifactProduced)
}

var _ Generator = (*Imagen)(nil)
