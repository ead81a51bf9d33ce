package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"autopost/internal/domain"
	"autopost/internal/providers/caption"
	"autopost/internal/providers/prompt"
	"autopost/internal/publisher"
	"autopost/internal/storage"
)

type captionFunc func(ctx context.Context, data []byte, mimeType, instruction string) (string, error)

func (f captionFunc) Describe(ctx context.Context, data []byte, mimeType, instruction string) (string, error) {
	return f(ctx, data, mimeType, instruction)
}

func TestRunEndToEnd(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
		forms []url.Values
	)
	graph := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		mu.Lock()
		calls = append(calls, r.URL.Path)
		forms = append(forms, r.PostForm)
		n := len(calls)
		mu.Unlock()
		fmt.Fprintf(w, `{"id":"c%d"}`, n)
	}))
	defer graph.Close()

	dir := t.TempDir()
	files, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	uploader := &stubUploader{base: "https://storage.example/bucket/"}
	var instruction string
	synth := caption.NewSynthesizer(captionFunc(func(ctx context.Context, data []byte, mimeType, instr string) (string, error) {
		instruction = instr
		return "A warrior rendered in traditional woodblock style.", nil
	}), nil)

	p, err := New(Options{
		Composer:  &stubComposer{req: domain.GenerationRequest{Subject: "Naruto", Style: "ukiyo-e"}},
		Backends:  []Backend{{Name: "stability", Generator: &stubGenerator{artifact: &domain.ImageArtifact{Data: pngBytes(t), MIMEType: domain.MIMETypePNG}}}},
		Stager:    storage.NewStager(files, uploader, "acct"),
		Captioner: synth,
		Primary:   publisher.NewInstagram("ig", publisher.GraphOptions{BaseURL: graph.URL, AccessToken: "t", HTTPClient: graph.Client()}),
		Secondary: publisher.NewThreads("th", publisher.GraphOptions{BaseURL: graph.URL, AccessToken: "t", HTTPClient: graph.Client()}),
		NewRunID:  func() string { return "run-1" },
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	res, err := p.Run(context.Background(), "stability", prompt.ModeDirect)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.Request.Text() != "Naruto, ukiyo-e" {
		t.Fatalf("prompt = %q", res.Request.Text())
	}
	if res.PublicURL != "https://storage.example/bucket/run-1" {
		t.Fatalf("public url = %q", res.PublicURL)
	}
	if !strings.Contains(instruction, "Naruto, ukiyo-e") {
		t.Fatalf("caption instruction = %q", instruction)
	}
	wantCalls := []string{"/ig/media", "/ig/media_publish", "/ig/media", "/ig/media_publish", "/th/threads", "/th/threads_publish"}
	if strings.Join(calls, ",") != strings.Join(wantCalls, ",") {
		t.Fatalf("graph calls = %v", calls)
	}
	if forms[0].Get("caption") != "A warrior rendered in traditional woodblock style." {
		t.Fatalf("feed caption = %q", forms[0].Get("caption"))
	}
	if _, err := os.Stat(files.PathFor("acct", "run-1", domain.MIMETypePNG)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("local artifact should be removed, stat err = %v", err)
	}
}

func TestRunAllCandidatesFiltered(t *testing.T) {
	f := newFixture(t, "")
	f.generator.artifact = nil
	f.generator.err = fmt.Errorf("stability: %w: every candidate was %w", domain.ErrNoArtifactProduced, domain.ErrContentFiltered)

	_, err := f.pipeline.Run(context.Background(), "stability", "")
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageGenerate {
		t.Fatalf("expected generate StageError, got %v", err)
	}
	if !errors.Is(err, domain.ErrNoArtifactProduced) {
		t.Fatalf("expected ErrNoArtifactProduced, got %v", err)
	}
	if f.uploader.calls != 0 || f.primary.calls != 0 || f.secondary.calls != 0 {
		t.Fatalf("no staging or publishing expected: uploads=%d primary=%d secondary=%d", f.uploader.calls, f.primary.calls, f.secondary.calls)
	}
	if files := f.files(t); len(files) != 0 {
		t.Fatalf("no local file expected, found %v", files)
	}
	if len(f.runs.finished) != 1 || !f.runs.finished[0].ContentFiltered || f.runs.finished[0].Stage != string(StageGenerate) {
		t.Fatalf("ledger = %#v", f.runs.finished)
	}
}

func TestRunFilteredCandidateThenImage(t *testing.T) {
	f := newFixture(t, "")
	f.generator.artifact.ContentFiltered = true

	res, err := f.pipeline.Run(context.Background(), "stability", "")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !res.ContentFiltered || f.secondary.calls != 1 {
		t.Fatalf("filtered=%v secondary=%d", res.ContentFiltered, f.secondary.calls)
	}
}

func TestRunCaptionFailureStillPublishesMarker(t *testing.T) {
	f := newFixture(t, "#api #stabilityai")
	f.captioner.caption = domain.Caption{Text: caption.ErrorMarker, Degraded: true}

	if _, err := f.pipeline.Run(context.Background(), "stability", ""); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if f.primary.calls != 1 || f.secondary.calls != 1 {
		t.Fatalf("publishers must run: primary=%d secondary=%d", f.primary.calls, f.secondary.calls)
	}
	if f.primary.captions[0] != caption.ErrorMarker || f.secondary.captions[0] != caption.ErrorMarker {
		t.Fatalf("delivered captions = %q / %q", f.primary.captions[0], f.secondary.captions[0])
	}
}

func TestRunAppendsHashtags(t *testing.T) {
	f := newFixture(t, "#api #stabilityai #stablediffusion #texttoimage")

	res, err := f.pipeline.Run(context.Background(), "stability", "")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	want := "A warrior rendered in traditional woodblock style. #api #stabilityai #stablediffusion #texttoimage"
	if res.Caption.Text != want || f.primary.captions[0] != want {
		t.Fatalf("caption = %q", f.primary.captions[0])
	}
	if f.captioner.hint != "Naruto, ukiyo-e" {
		t.Fatalf("caption hint = %q", f.captioner.hint)
	}
}

func TestRunUploadFailureCleansUp(t *testing.T) {
	f := newFixture(t, "")
	f.uploader.err = errors.New("403 forbidden")

	_, err := f.pipeline.Run(context.Background(), "stability", "")
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageStage || !errors.Is(err, domain.ErrUploadFailure) {
		t.Fatalf("expected stage/upload failure, got %v", err)
	}
	if files := f.files(t); len(files) != 0 {
		t.Fatalf("local file must be cleaned up, found %v", files)
	}
	if f.primary.calls != 0 {
		t.Fatal("publisher must not receive an unconfirmed url")
	}
}

func TestRunPrimaryPublishFailure(t *testing.T) {
	f := newFixture(t, "")
	f.primary.err = fmt.Errorf("%w: instagram story: status 400", domain.ErrPublishFailure)

	_, err := f.pipeline.Run(context.Background(), "stability", "")
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StagePublishPrimary || !errors.Is(err, domain.ErrPublishFailure) {
		t.Fatalf("expected publish_primary failure, got %v", err)
	}
	if f.secondary.calls != 0 {
		t.Fatal("secondary publisher must not run after a primary failure")
	}
	if files := f.files(t); len(files) != 0 {
		t.Fatalf("local file must be cleaned up, found %v", files)
	}
}

func TestRunSecondaryPublishFailure(t *testing.T) {
	f := newFixture(t, "")
	f.secondary.err = fmt.Errorf("%w: threads", domain.ErrPublishFailure)

	_, err := f.pipeline.Run(context.Background(), "stability", "")
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StagePublishSecondary {
		t.Fatalf("expected publish_secondary failure, got %v", err)
	}
	if f.primary.calls != 1 {
		t.Fatal("primary post stays published")
	}
	if files := f.files(t); len(files) != 0 {
		t.Fatalf("local file must be cleaned up, found %v", files)
	}
}

func TestRunComposeFailure(t *testing.T) {
	f := newFixture(t, "")
	f.composer.err = errors.New("openai: 401")

	_, err := f.pipeline.Run(context.Background(), "stability", prompt.ModeContextual)
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageCompose {
		t.Fatalf("expected compose failure, got %v", err)
	}
	if f.generator.calls != 0 {
		t.Fatal("generator must not run without a prompt")
	}
	if f.composer.mode != prompt.ModeContextual {
		t.Fatalf("mode passed to composer = %q", f.composer.mode)
	}
}

func TestRunUnknownBackend(t *testing.T) {
	f := newFixture(t, "")
	_, err := f.pipeline.Run(context.Background(), "midjourney", "")
	if !errors.Is(err, domain.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
	if len(f.runs.created) != 0 {
		t.Fatal("unknown backends must not create ledger entries")
	}
}

func TestRunLedger(t *testing.T) {
	f := newFixture(t, "")
	if _, err := f.pipeline.Run(context.Background(), "Stability", ""); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(f.runs.created) != 1 || f.runs.created[0].Status != domain.RunStatusRunning || f.runs.created[0].Mode != string(prompt.ModeDirect) {
		t.Fatalf("created = %#v", f.runs.created)
	}
	fin := f.runs.finished[0]
	if fin.Status != domain.RunStatusOK || fin.PublicURL != "https://storage.example/bucket/20260301T100000-abcd1234" || fin.FinishedAt == nil {
		t.Fatalf("finished = %#v", fin)
	}
}

func TestRunLedgerFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, "")
	f.runs.err = errors.New("db down")
	if _, err := f.pipeline.Run(context.Background(), "stability", ""); err != nil {
		t.Fatalf("ledger errors must not fail the run: %v", err)
	}
}

func TestNewRejectsDuplicateBackends(t *testing.T) {
	f := newFixture(t, "")
	_, err := New(Options{
		Composer:  f.composer,
		Backends:  []Backend{{Name: "a", Generator: f.generator}, {Name: "A", Generator: f.generator}},
		Stager:    storage.NewStager(nil, nil, ""),
		Captioner: f.captioner,
		Primary:   f.primary,
		Secondary: f.secondary,
	})
	if err == nil {
		t.Fatal("expected duplicate backend error")
	}
}

func TestBackendsSorted(t *testing.T) {
	f := newFixture(t, "")
	if got := f.pipeline.Backends(); len(got) != 1 || got[0] != "stability" {
		t.Fatalf("Backends = %v", got)
	}
	if !f.pipeline.HasBackend(" STABILITY ") {
		t.Fatal("HasBackend should normalise names")
	}
}
