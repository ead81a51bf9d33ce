package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"iter"

	"autopost/internal/domain"
	"autopost/internal/providers/stability"
)

type stabilityClient interface {
	Generate(ctx context.Context, req stability.Request) iter.Seq2[stability.Artifact, error]
}

// Stability is the diffusion backend. Negative terms become negatively weighted prompts.
type Stability struct {
	client stabilityClient
}

func NewStability(client stabilityClient) *Stability {
	return &Stability{client: client}
}

// Generate scans the streamed artifacts and returns the first unfiltered image. Filtered
// candidates set ContentFiltered and scanning continues.
func (s *Stability) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageArtifact, error) {
	prompts := []stability.TextPrompt{{Text: req.Text(), Weight: 1}}
	for _, term := range req.NegativeTerms {
		prompts = append(prompts, stability.TextPrompt{Text: term, Weight: -1})
	}

	filtered := false
	for artifact, err := range s.client.Generate(ctx, stability.Request{Prompts: prompts, Samples: 1}) {
		if err != nil {
			return nil, err
		}
		if artifact.Filtered() {
			filtered = true
			continue
		}
		if artifact.FinishReason == stability.FinishError || artifact.Base64 == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(artifact.Base64)
		if err != nil {
			return nil, fmt.Errorf("stability: decode artifact: %w", err)
		}
		return newArtifact(data, filtered)
	}

	if filtered {
		return nil, fmt.Errorf("stability: %w: every candidate was %w", domain.ErrNoArtifactProduced, domain.ErrContentFiltered)
	}
	return nil, fmt.Errorf("stability: %w", domain.ErrNoArtifactProduced)
}

var _ Generator = (*Stability)(nil)
