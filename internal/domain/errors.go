package domain

import "errors"

var (
	ErrContentFiltered    = errors.New("content filtered")
	ErrNoArtifactProduced = errors.New("no image generated")
	ErrUploadFailure      = errors.New("upload failure")
	ErrCaptionFailure     = errors.New("caption failure")
	ErrPublishFailure     = errors.New("publish failure")
	ErrUnknownBackend     = errors.New("unknown backend")
	ErrNotFound           = errors.New("not found")
)
