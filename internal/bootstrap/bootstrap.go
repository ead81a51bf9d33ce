// Package bootstrap builds the pipeline graph from configuration for the api and worker binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openai/openai-go"

	"autopost/internal/adapter/repo"
	"autopost/internal/domain"
	"autopost/internal/infra"
	"autopost/internal/infra/credentials"
	"autopost/internal/pipeline"
	"autopost/internal/providers/caption"
	"autopost/internal/providers/gemini"
	"autopost/internal/providers/image"
	"autopost/internal/providers/openaiapi"
	"autopost/internal/providers/prompt"
	"autopost/internal/providers/stability"
	"autopost/internal/publisher"
	"autopost/internal/storage"
)

// Backend names double as trigger names.
const (
	BackendStability = "stability"
	BackendOpenAI    = "openai"
	BackendImagen    = "imagen"
)

var hashtags = map[string]string{
	BackendStability: "#api #stabilityai #stablediffusion #texttoimage",
	BackendOpenAI:    "#chatgpt #openai #api #dalle3 #texttoimage",
	BackendImagen:    "#api #google #imagen #texttoimage",
}

// ErrNoBackends is returned when no image backend has credentials.
var ErrNoBackends = errors.New("bootstrap: no image backend configured")

// Secrets are the credentials resolved from configuration and the credential store.
type Secrets struct {
	Stability string
	OpenAI    string
	Gemini    string
	Instagram string
	Threads   string
}

// Graph is a ready pipeline plus the resources that back it.
type Graph struct {
	Pipeline *pipeline.Pipeline
	// Runs is nil when no database is configured.
	Runs domain.RunRepository
	pool *pgxpool.Pool
}

// Close releases the database pool, if any.
func (g *Graph) Close() {
	if g.pool != nil {
		g.pool.Close()
	}
}

// Build connects the optional database, resolves credentials and wires the pipeline.
func Build(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (*Graph, error) {
	var (
		pool  *pgxpool.Pool
		runs  domain.RunRepository
		store *credentials.Store
	)
	if cfg.DatabaseURL != "" {
		p, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		runner := infra.NewSQLRunner(p, *logger)
		if err := repo.EnsureSchema(ctx, runner); err != nil {
			p.Close()
			return nil, err
		}
		pool = p
		runs = repo.NewRunRepository(runner)
		store = credentials.NewStore(runner)
	}

	secrets, err := ResolveSecrets(ctx, cfg, store)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}
	p, err := NewPipeline(ctx, cfg, secrets, runs, logger)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}
	return &Graph{Pipeline: p, Runs: runs, pool: pool}, nil
}

// ResolveSecrets prefers environment values and falls back to stored credentials. A nil store
// only uses the environment.
func ResolveSecrets(ctx context.Context, cfg *infra.Config, store *credentials.Store) (Secrets, error) {
	var s Secrets
	fields := []struct {
		provider   string
		configured string
		dst        *string
	}{
		{credentials.ProviderStability, cfg.StabilityAPIKey, &s.Stability},
		{credentials.ProviderOpenAI, cfg.OpenAIAPIKey, &s.OpenAI},
		{credentials.ProviderGemini, cfg.GeminiAPIKey, &s.Gemini},
		{credentials.ProviderInstagram, cfg.InstagramToken, &s.Instagram},
		{credentials.ProviderThreads, cfg.ThreadsToken, &s.Threads},
	}
	for _, f := range fields {
		v, err := store.Resolve(ctx, f.provider, f.configured)
		if err != nil {
			return Secrets{}, fmt.Errorf("resolve %s credential: %w", f.provider, err)
		}
		*f.dst = v
	}
	return s, nil
}

// NewPipeline wires every backend that has credentials. runs may be nil.
func NewPipeline(ctx context.Context, cfg *infra.Config, secrets Secrets, runs domain.RunRepository, logger *infra.Logger) (*pipeline.Pipeline, error) {
	withTokens := *cfg
	withTokens.InstagramToken = secrets.Instagram
	withTokens.ThreadsToken = secrets.Threads
	if err := withTokens.ValidatePublishing(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: 120 * time.Second}

	var oa *openai.Client
	if secrets.OpenAI != "" {
		c, err := openaiapi.NewClient(openaiapi.Options{
			APIKey:       secrets.OpenAI,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			HTTPClient:   httpClient,
		})
		if err != nil {
			return nil, err
		}
		oa = &c
	}
	var models gemini.Models
	if secrets.Gemini != "" {
		m, err := gemini.NewModels(ctx, gemini.Options{APIKey: secrets.Gemini, HTTPClient: httpClient})
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		models = m
	}

	chatModel, _ := openaiapi.NormalizeModel(cfg.OpenAIModel)
	var completer prompt.Completer
	switch {
	case cfg.PromptProvider == "gemini" && models != nil:
		completer = prompt.NewGeminiCompleter(models, cfg.CaptionModel)
	case cfg.PromptProvider == "openai" && oa != nil:
		completer = prompt.NewOpenAICompleter(&oa.Chat.Completions, chatModel)
	}
	composer := prompt.NewComposer(prompt.Options{Completer: completer})

	var backends []pipeline.Backend
	if secrets.Stability != "" {
		client, err := stability.NewClient(stability.Options{
			APIKey:  secrets.Stability,
			BaseURL: cfg.StabilityBaseURL,
			Engine:  cfg.StabilityEngine,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		backends = append(backends, pipeline.Backend{
			Name:      BackendStability,
			Generator: image.NewStability(client),
			Mode:      prompt.ModeDirect,
			Profile:   prompt.StabilityProfile,
			Hashtags:  hashtags[BackendStability],
		})
	}
	if oa != nil {
		mode := prompt.ModeContextual
		if completer == nil {
			mode = prompt.ModeDirect
		}
		backends = append(backends, pipeline.Backend{
			Name:      BackendOpenAI,
			Generator: image.NewDallE(&oa.Images, cfg.OpenAIImageModel, httpClient),
			Mode:      mode,
			Profile:   prompt.DallEProfile,
			Hashtags:  hashtags[BackendOpenAI],
		})
	}
	if models != nil {
		backends = append(backends, pipeline.Backend{
			Name:      BackendImagen,
			Generator: image.NewImagen(models, cfg.ImagenModel),
			Mode:      prompt.ModeDirect,
			Profile:   prompt.ImagenProfile,
			Hashtags:  hashtags[BackendImagen],
		})
	}
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}

	files, err := storage.NewFileStore(cfg.ArtifactDir)
	if err != nil {
		return nil, err
	}
	blobs, err := storage.NewBlobStore(storage.BlobOptions{
		Endpoint:      cfg.StorageEndpoint,
		AccessKey:     cfg.StorageAccessKey,
		SecretKey:     cfg.StorageSecretKey,
		UseSSL:        cfg.StorageUseSSL,
		Region:        cfg.StorageRegion,
		Bucket:        cfg.StorageBucket,
		PublicBaseURL: cfg.StoragePublicBaseURL,
	})
	if err != nil {
		return nil, err
	}

	var captionProvider caption.Provider
	switch {
	case cfg.CaptionProvider == "gemini" && models != nil:
		captionProvider = caption.NewGemini(models, cfg.CaptionModel, cfg.CaptionStreaming)
	case cfg.CaptionProvider == "openai" && oa != nil:
		captionProvider = caption.NewOpenAIVision(&oa.Chat.Completions, chatModel)
	default:
		logger.Warn().Str("provider", cfg.CaptionProvider).Msg("caption provider has no credentials; captions will degrade")
	}

	graph := publisher.GraphOptions{HTTPClient: httpClient, MinInterval: cfg.GraphMinInterval}
	igOpts := graph
	igOpts.BaseURL = cfg.InstagramBaseURL
	igOpts.AccessToken = secrets.Instagram
	thOpts := graph
	thOpts.BaseURL = cfg.ThreadsBaseURL
	thOpts.AccessToken = secrets.Threads

	return pipeline.New(pipeline.Options{
		Composer:  composer,
		Backends:  backends,
		Stager:    storage.NewStager(files, blobs, cfg.AccountID),
		Captioner: caption.NewSynthesizer(captionProvider, logger),
		Primary:   publisher.NewInstagram(cfg.AccountID, igOpts),
		Secondary: publisher.NewThreads(cfg.ThreadsUserID, thOpts),
		Runs:      runs,
		Logger:    logger,
	})
}
