package pipeline

import (
	"bytes"
	"context"
	"errors"
	stdimage "image"
	"image/png"
	"os"
	"sync"
	"testing"

	"autopost/internal/domain"
	"autopost/internal/providers/prompt"
	"autopost/internal/storage"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, stdimage.NewRGBA(stdimage.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type stubComposer struct {
	req  domain.GenerationRequest
	err  error
	mode prompt.Mode
}

func (s *stubComposer) Compose(ctx context.Context, mode prompt.Mode, profile prompt.Profile) (domain.GenerationRequest, error) {
	s.mode = mode
	return s.req, s.err
}

type stubGenerator struct {
	artifact *domain.ImageArtifact
	err      error
	calls    int
}

func (s *stubGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageArtifact, error) {
	s.calls++
	return s.artifact, s.err
}

type stubCaptioner struct {
	caption domain.Caption
	hint    string
}

func (s *stubCaptioner) Caption(ctx context.Context, localPath, hint string) domain.Caption {
	s.hint = hint
	return s.caption
}

type recordingPublisher struct {
	name     string
	err      error
	calls    int
	captions []string
	urls     []string
}

func (r *recordingPublisher) Name() string { return r.name }

func (r *recordingPublisher) Publish(ctx context.Context, asset domain.StagedAsset, caption domain.Caption) error {
	r.calls++
	r.captions = append(r.captions, caption.Text)
	r.urls = append(r.urls, asset.PublicURL)
	return r.err
}

type stubUploader struct {
	base  string
	err   error
	calls int
}

func (s *stubUploader) Upload(ctx context.Context, localPath, object, contentType string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if _, err := os.Stat(localPath); err != nil {
		return "", err
	}
	return s.base + object, nil
}

type stubRuns struct {
	mu       sync.Mutex
	created  []domain.Run
	finished []domain.Run
	err      error
}

func (s *stubRuns) Create(ctx context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, *run)
	return s.err
}

func (s *stubRuns) Finish(ctx context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, *run)
	return s.err
}

func (s *stubRuns) ListRecent(ctx context.Context, limit int) ([]domain.Run, error) {
	return nil, errors.New("not implemented")
}

type fixture struct {
	dir       string
	composer  *stubComposer
	generator *stubGenerator
	uploader  *stubUploader
	captioner *stubCaptioner
	primary   *recordingPublisher
	secondary *recordingPublisher
	runs      *stubRuns
	pipeline  *Pipeline
}

func newFixture(t *testing.T, hashtags string) *fixture {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	f := &fixture{
		dir:       dir,
		composer:  &stubComposer{req: domain.GenerationRequest{Subject: "Naruto", Style: "ukiyo-e"}},
		generator: &stubGenerator{artifact: &domain.ImageArtifact{Data: pngBytes(t), MIMEType: domain.MIMETypePNG}},
		uploader:  &stubUploader{base: "https://storage.example/bucket/"},
		captioner: &stubCaptioner{caption: domain.Caption{Text: "A warrior rendered in traditional woodblock style."}},
		primary:   &recordingPublisher{name: "instagram"},
		secondary: &recordingPublisher{name: "threads"},
		runs:      &stubRuns{},
	}
	p, err := New(Options{
		Composer:  f.composer,
		Backends:  []Backend{{Name: "stability", Generator: f.generator, Hashtags: hashtags}},
		Stager:    storage.NewStager(files, f.uploader, "acct"),
		Captioner: f.captioner,
		Primary:   f.primary,
		Secondary: f.secondary,
		Runs:      f.runs,
		NewRunID:  func() string { return "20260301T100000-abcd1234" },
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	f.pipeline = p
	return f
}

func (f *fixture) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
