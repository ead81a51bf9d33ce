// Package image holds the interchangeable image-generation backends.
package image

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	_ "image/jpeg"
	_ "image/png"

	"autopost/internal/domain"
)

// Generator is the contract implemented by all image backends. Implementations perform
// no disk or storage writes.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageArtifact, error)
}

// DetectMIME decodes the image header and reports the encoding actually present in data.
func DetectMIME(data []byte) (domain.MIMEType, error) {
	_, format, err := stdimage.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	switch format {
	case "png":
		return domain.MIMETypePNG, nil
	case "jpeg":
		return domain.MIMETypeJPEG, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", format)
	}
}

func newArtifact(data []byte, filtered bool) (*domain.ImageArtifact, error) {
	mime, err := DetectMIME(data)
	if err != nil {
		return nil, err
	}
	return &domain.ImageArtifact{Data: data, MIMEType: mime, ContentFiltered: filtered}, nil
}
