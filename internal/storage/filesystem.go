package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"autopost/internal/domain"
)

// FileStore writes run artifacts under a local directory.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// PathFor derives the artifact path for one run: {base}/image_{account}_{run}{ext}.
func (s *FileStore) PathFor(account, runID string, mime domain.MIMEType) string {
	name := fmt.Sprintf("image_%s_%s%s", sanitizeName(account), sanitizeName(runID), mime.Extension())
	return filepath.Join(s.basePath, name)
}

// Write stores data at path, which must live under the base directory.
func (s *FileStore) Write(ctx context.Context, path string, data []byte) error {
	if s == nil {
		return errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.contains(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("storage: write file: %w", err)
	}
	return nil
}

// Remove deletes path. A missing file is reported with an error wrapping os.ErrNotExist.
func (s *FileStore) Remove(path string) error {
	if err := s.contains(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}

func (s *FileStore) contains(path string) error {
	rel, err := filepath.Rel(s.basePath, filepath.Clean(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("storage: path %q is outside %q", path, s.basePath)
	}
	return nil
}

// sanitizeName keeps a path component from escaping the storage root.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
	if name == "" {
		return "unknown"
	}
	return name
}
