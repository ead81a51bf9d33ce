package domain

import "strings"

// MIMEType enumerates the image encodings produced by the generation backends.
type MIMEType string

const (
	MIMETypePNG  MIMEType = "image/png"
	MIMETypeJPEG MIMEType = "image/jpeg"
)

// Extension returns the file extension used when the artifact is written to disk.
func (m MIMEType) Extension() string {
	switch m {
	case MIMETypeJPEG:
		return ".jpg"
	default:
		return ".png"
	}
}

// GenerationRequest is the composed input handed to an image backend. It is
// built fresh for every run and must not be mutated once generation starts.
type GenerationRequest struct {
	Subject       string
	Style         string
	Prompt        string
	NegativeTerms []string
}

// Text returns the prompt sent to the backend. Requests built without an
// explicit prompt fall back to "{subject}, {style}".
func (r GenerationRequest) Text() string {
	if p := strings.TrimSpace(r.Prompt); p != "" {
		return p
	}
	subject := strings.TrimSpace(r.Subject)
	style := strings.TrimSpace(r.Style)
	switch {
	case subject == "":
		return style
	case style == "":
		return subject
	default:
		return subject + ", " + style
	}
}

// ImageArtifact is the raw generated payload before it reaches durable storage.
type ImageArtifact struct {
	Data            []byte
	MIMEType        MIMEType
	ContentFiltered bool
}

// StagedAsset is an artifact after upload. LocalPath is removed when the run
// ends; PublicURL is only populated once the upload has been confirmed.
type StagedAsset struct {
	LocalPath string
	PublicURL string
}

// Caption is the text delivered to the publishers.
type Caption struct {
	Text string
	// Degraded marks a caption replaced by the error marker after a provider failure.
	Degraded bool
}

// PublishPhase tracks the two-phase container protocol.
type PublishPhase string

const (
	PublishPhaseCreated   PublishPhase = "created"
	PublishPhasePublished PublishPhase = "published"
)

// PublishResult chains the container-create and publish calls.
type PublishResult struct {
	MediaID string
	Phase   PublishPhase
}
