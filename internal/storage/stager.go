package storage

import (
	"context"
	"fmt"

	"autopost/internal/domain"
)

// Uploader moves a local file into durable storage and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, localPath, object, contentType string) (string, error)
}

// Stager writes an artifact to disk and uploads it under a blob name equal to the run id.
// It never deletes the local file; the caller owns cleanup.
type Stager struct {
	files   *FileStore
	blobs   Uploader
	account string
}

func NewStager(files *FileStore, blobs Uploader, account string) *Stager {
	return &Stager{files: files, blobs: blobs, account: account}
}

// PathFor returns the local path an artifact of this run will be written to.
func (s *Stager) PathFor(runID string, mime domain.MIMEType) string {
	return s.files.PathFor(s.account, runID, mime)
}

// Remove deletes a staged local file.
func (s *Stager) Remove(path string) error {
	return s.files.Remove(path)
}

func (s *Stager) Stage(ctx context.Context, artifact *domain.ImageArtifact, runID string) (domain.StagedAsset, error) {
	path := s.PathFor(runID, artifact.MIMEType)
	if err := s.files.Write(ctx, path, artifact.Data); err != nil {
		return domain.StagedAsset{}, fmt.Errorf("%w: %w", domain.ErrUploadFailure, err)
	}
	staged := domain.StagedAsset{LocalPath: path}
	publicURL, err := s.blobs.Upload(ctx, path, runID, string(artifact.MIMEType))
	if err != nil {
		return staged, fmt.Errorf("%w: %w", domain.ErrUploadFailure, err)
	}
	staged.PublicURL = publicURL
	return staged, nil
}
