// Package pipeline runs one generation-to-publish pass: compose, generate, stage, caption,
// publish to both platforms, and always clean up the local artifact.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"autopost/internal/domain"
	"autopost/internal/infra"
	"autopost/internal/providers/image"
	"autopost/internal/providers/prompt"
	"autopost/internal/publisher"
)

var tracer = otel.Tracer("autopost/pipeline")

// Composer builds the generation request for a run.
type Composer interface {
	Compose(ctx context.Context, mode prompt.Mode, profile prompt.Profile) (domain.GenerationRequest, error)
}

// Stager owns local artifact files and their upload.
type Stager interface {
	PathFor(runID string, mime domain.MIMEType) string
	Stage(ctx context.Context, artifact *domain.ImageArtifact, runID string) (domain.StagedAsset, error)
	Remove(path string) error
}

// Captioner never fails; a degraded caption carries the error marker.
type Captioner interface {
	Caption(ctx context.Context, localPath, hint string) domain.Caption
}

// Backend binds an image generator to its prompt settings.
type Backend struct {
	Name      string
	Generator image.Generator
	Mode      prompt.Mode
	Profile   prompt.Profile
	// Hashtags is appended to captions that were not degraded.
	Hashtags string
}

// Options wires a Pipeline. Runs and NewRunID are optional.
type Options struct {
	Composer  Composer
	Backends  []Backend
	Stager    Stager
	Captioner Captioner
	Primary   publisher.Publisher
	Secondary publisher.Publisher
	Runs      domain.RunRepository
	Logger    *infra.Logger
	NewRunID  func() string
	Now       func() time.Time
}

// Pipeline holds only read-only collaborators, so concurrent runs share no mutable state.
type Pipeline struct {
	composer  Composer
	backends  map[string]Backend
	stager    Stager
	captioner Captioner
	primary   publisher.Publisher
	secondary publisher.Publisher
	runs      domain.RunRepository
	logger    *infra.Logger
	newRunID  func() string
	now       func() time.Time
}

// Result describes a successful run.
type Result struct {
	RunID           string
	Backend         string
	Mode            prompt.Mode
	Request         domain.GenerationRequest
	PublicURL       string
	Caption         domain.Caption
	ContentFiltered bool
}

func New(opts Options) (*Pipeline, error) {
	if opts.Composer == nil || opts.Stager == nil || opts.Captioner == nil {
		return nil, errors.New("pipeline: composer, stager and captioner are required")
	}
	if opts.Primary == nil || opts.Secondary == nil {
		return nil, errors.New("pipeline: both publishers are required")
	}
	backends := make(map[string]Backend, len(opts.Backends))
	for _, b := range opts.Backends {
		name := strings.ToLower(strings.TrimSpace(b.Name))
		if name == "" || b.Generator == nil {
			return nil, fmt.Errorf("pipeline: backend %q is incomplete", b.Name)
		}
		if _, dup := backends[name]; dup {
			return nil, fmt.Errorf("pipeline: backend %q registered twice", name)
		}
		if b.Mode == "" {
			b.Mode = prompt.ModeDirect
		}
		b.Name = name
		backends[name] = b
	}
	logger := opts.Logger
	if logger == nil {
		l := zerolog.New(io.Discard)
		logger = &l
	}
	newID := opts.NewRunID
	if newID == nil {
		newID = NewRunID
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		composer:  opts.Composer,
		backends:  backends,
		stager:    opts.Stager,
		captioner: opts.Captioner,
		primary:   opts.Primary,
		secondary: opts.Secondary,
		runs:      opts.Runs,
		logger:    logger,
		newRunID:  newID,
		now:       now,
	}, nil
}

// Backends lists the registered backend names in sorted order.
func (p *Pipeline) Backends() []string {
	names := make([]string, 0, len(p.backends))
	for name := range p.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasBackend reports whether name is registered.
func (p *Pipeline) HasBackend(name string) bool {
	_, ok := p.backends[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Run executes one pass for backend. An empty mode uses the backend default. Failures are
// returned as *StageError except for an unknown backend.
func (p *Pipeline) Run(ctx context.Context, backendName string, mode prompt.Mode) (res *Result, err error) {
	backend, ok := p.backends[strings.ToLower(strings.TrimSpace(backendName))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, backendName)
	}
	if mode == "" {
		mode = backend.Mode
	}

	runID := p.newRunID()
	log := p.logger.With().Str("run_id", runID).Str("backend", backend.Name).Str("mode", string(mode)).Logger()
	ctx, span := tracer.Start(ctx, "pipeline_run")
	span.SetAttributes(
		attribute.String("pipeline.run_id", runID),
		attribute.String("pipeline.backend", backend.Name),
	)
	defer span.End()

	run := &domain.Run{
		ID:        runID,
		Backend:   backend.Name,
		Mode:      string(mode),
		Status:    domain.RunStatusRunning,
		Stage:     string(StageCompose),
		StartedAt: p.now().UTC(),
	}
	p.recordStart(ctx, &log, run)

	result := &Result{RunID: runID, Backend: backend.Name, Mode: mode}
	localPath := ""
	defer func() {
		p.cleanup(ctx, &log, localPath)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "run failed")
			log.Error().Err(err).Msg("pipeline run failed")
		} else {
			log.Info().Str("public_url", result.PublicURL).Bool("caption_degraded", result.Caption.Degraded).Msg("pipeline run ok")
		}
		p.recordFinish(ctx, &log, run, result, err)
	}()

	fail := func(stage Stage, cause error) (*Result, error) {
		run.Stage = string(stage)
		return nil, &StageError{Stage: stage, Err: cause}
	}

	// compose
	run.Stage = string(StageCompose)
	log.Debug().Msg("compose")
	req, err := p.composer.Compose(ctx, mode, backend.Profile)
	if err != nil {
		return fail(StageCompose, err)
	}
	result.Request = req

	// generate
	run.Stage = string(StageGenerate)
	log.Debug().Str("prompt", req.Text()).Msg("generate")
	artifact, err := backend.Generator.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrContentFiltered) {
			result.ContentFiltered = true
			log.Warn().Msg("every candidate was content filtered")
		}
		return fail(StageGenerate, err)
	}
	if artifact.ContentFiltered {
		result.ContentFiltered = true
		log.Warn().Msg("content filter rejected a candidate; continuing with a later artifact")
	}

	// stage
	run.Stage = string(StageStage)
	localPath = p.stager.PathFor(runID, artifact.MIMEType)
	log.Debug().Str("path", localPath).Msg("stage")
	staged, err := p.stager.Stage(ctx, artifact, runID)
	if err != nil {
		return fail(StageStage, err)
	}
	if staged.LocalPath != "" {
		localPath = staged.LocalPath
	}
	if staged.PublicURL == "" {
		return fail(StageStage, fmt.Errorf("%w: no public url", domain.ErrUploadFailure))
	}
	result.PublicURL = staged.PublicURL

	// caption
	run.Stage = string(StageCaption)
	log.Debug().Msg("caption")
	caption := p.captioner.Caption(ctx, staged.LocalPath, req.Text())
	if !caption.Degraded && backend.Hashtags != "" {
		caption.Text = caption.Text + " " + backend.Hashtags
	}
	result.Caption = caption

	// publish_primary
	run.Stage = string(StagePublishPrimary)
	log.Debug().Str("publisher", p.primary.Name()).Msg("publish")
	if err := p.primary.Publish(ctx, staged, caption); err != nil {
		return fail(StagePublishPrimary, err)
	}

	// publish_secondary
	run.Stage = string(StagePublishSecondary)
	log.Debug().Str("publisher", p.secondary.Name()).Msg("publish")
	if err := p.secondary.Publish(ctx, staged, caption); err != nil {
		return fail(StagePublishSecondary, err)
	}

	run.Stage = string(StageCleanup)
	return result, nil
}

// cleanup removes the local artifact. Errors are logged only.
func (p *Pipeline) cleanup(ctx context.Context, log *zerolog.Logger, path string) {
	if path == "" {
		return
	}
	_, span := tracer.Start(ctx, "pipeline_cleanup")
	defer span.End()
	if err := p.stager.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", path).Msg("artifact already absent")
			return
		}
		log.Warn().Err(err).Str("path", path).Msg("artifact cleanup failed")
		return
	}
	log.Debug().Str("path", path).Msg("artifact removed")
}

func (p *Pipeline) recordStart(ctx context.Context, log *zerolog.Logger, run *domain.Run) {
	if p.runs == nil {
		return
	}
	if err := p.runs.Create(ctx, run); err != nil {
		log.Warn().Err(err).Msg("run ledger: create failed")
	}
}

func (p *Pipeline) recordFinish(ctx context.Context, log *zerolog.Logger, run *domain.Run, res *Result, runErr error) {
	if p.runs == nil {
		return
	}
	finished := p.now().UTC()
	run.FinishedAt = &finished
	run.Prompt = res.Request.Text()
	run.PublicURL = res.PublicURL
	run.Caption = res.Caption.Text
	run.ContentFiltered = res.ContentFiltered
	if runErr != nil {
		run.Status = domain.RunStatusFailed
		run.ErrorMessage = runErr.Error()
	} else {
		run.Status = domain.RunStatusOK
	}
	// detached: a cancelled request still records its outcome
	ctx = context.WithoutCancel(ctx)
	if err := p.runs.Finish(ctx, run); err != nil {
		log.Warn().Err(err).Msg("run ledger: finish failed")
	}
}
