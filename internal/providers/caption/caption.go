// Package caption derives post captions from staged images with a vision-capable model.
package caption

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"autopost/internal/domain"
	"autopost/internal/infra"
	"autopost/internal/providers/image"
)

// ErrorMarker replaces the caption when the provider fails.
const ErrorMarker = "Error: caption unavailable"

const instructionTemplate = "Describe this image suitably for a social post, given it depicts %s."

// Provider describes inline image bytes following instruction.
type Provider interface {
	Describe(ctx context.Context, data []byte, mimeType, instruction string) (string, error)
}

// Instruction renders the fixed captioning instruction for hint.
func Instruction(hint string) string {
	return fmt.Sprintf(instructionTemplate, strings.TrimSpace(hint))
}

// Synthesizer never fails: provider errors degrade the caption to ErrorMarker.
type Synthesizer struct {
	provider Provider
	logger   *infra.Logger
}

func NewSynthesizer(provider Provider, logger *infra.Logger) *Synthesizer {
	if logger == nil {
		l := zerolog.New(io.Discard)
		logger = &l
	}
	return &Synthesizer{provider: provider, logger: logger}
}

// Caption reads the image from localPath rather than the public URL.
func (s *Synthesizer) Caption(ctx context.Context, localPath, hint string) domain.Caption {
	text, err := s.describe(ctx, localPath, hint)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", localPath).Msg("caption degraded")
		return domain.Caption{Text: ErrorMarker, Degraded: true}
	}
	return domain.Caption{Text: text}
}

func (s *Synthesizer) describe(ctx context.Context, localPath, hint string) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("%w: no provider configured", domain.ErrCaptionFailure)
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: read image: %w", domain.ErrCaptionFailure, err)
	}
	mime, err := image.DetectMIME(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCaptionFailure, err)
	}
	text, err := s.provider.Describe(ctx, data, string(mime), Instruction(hint))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCaptionFailure, err)
	}
	// models may emit decomposed accents; publish composed text
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrCaptionFailure, errors.New("empty caption"))
	}
	return text, nil
}
