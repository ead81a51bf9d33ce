package bootstrap

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"autopost/internal/infra"
)

func testConfig(t *testing.T) *infra.Config {
	t.Helper()
	return &infra.Config{
		AccountID:            "17841400000000000",
		InstagramBaseURL:     "https://graph.instagram.com/v22.0",
		ThreadsUserID:        "2600000000",
		ThreadsBaseURL:       "https://graph.threads.net/v1.0",
		StabilityEngine:      "stable-diffusion-xl-1024-v1-0",
		StabilityBaseURL:     "https://api.stability.ai",
		OpenAIModel:          "gpt4o-mini",
		OpenAIImageModel:     "dall-e-3",
		OpenAIBaseURL:        "https://api.openai.com/v1",
		CaptionModel:         "gemini-2.5-flash",
		ImagenModel:          "imagen-3.0-generate-002",
		PromptProvider:       "openai",
		CaptionProvider:      "gemini",
		StorageEndpoint:      "storage.googleapis.com",
		StorageUseSSL:        true,
		StorageRegion:        "auto",
		StorageBucket:        "ai-bot-app-insta",
		StoragePublicBaseURL: "https://storage.googleapis.com",
		ArtifactDir:          t.TempDir(),
	}
}

func nopLogger() *infra.Logger {
	l := zerolog.Nop()
	return &l
}

func TestNewPipelineRegistersBackendsWithCredentials(t *testing.T) {
	cfg := testConfig(t)
	secrets := Secrets{Stability: "sk-stab", OpenAI: "sk-oa", Gemini: "g-key", Instagram: "ig", Threads: "th"}

	p, err := NewPipeline(context.Background(), cfg, secrets, nil, nopLogger())
	if err != nil {
		t.Fatalf("NewPipeline error: %v", err)
	}
	got := strings.Join(p.Backends(), ",")
	if got != "imagen,openai,stability" {
		t.Fatalf("backends = %s", got)
	}
}

func TestNewPipelineSkipsBackendsWithoutKeys(t *testing.T) {
	cfg := testConfig(t)
	p, err := NewPipeline(context.Background(), cfg, Secrets{Stability: "sk", Instagram: "ig", Threads: "th"}, nil, nopLogger())
	if err != nil {
		t.Fatalf("NewPipeline error: %v", err)
	}
	if p.HasBackend(BackendOpenAI) || p.HasBackend(BackendImagen) || !p.HasBackend(BackendStability) {
		t.Fatalf("backends = %v", p.Backends())
	}
}

func TestNewPipelineErrors(t *testing.T) {
	cfg := testConfig(t)
	if _, err := NewPipeline(context.Background(), cfg, Secrets{Instagram: "ig", Threads: "th"}, nil, nopLogger()); !errors.Is(err, ErrNoBackends) {
		t.Fatalf("expected ErrNoBackends, got %v", err)
	}
	_, err := NewPipeline(context.Background(), cfg, Secrets{Stability: "sk", Instagram: "ig"}, nil, nopLogger())
	if err == nil || !strings.Contains(err.Error(), "THREADS_API_TOKEN") {
		t.Fatalf("expected missing threads token error, got %v", err)
	}
}

func TestResolveSecretsWithoutStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.StabilityAPIKey = " sk "
	cfg.InstagramToken = "ig"
	s, err := ResolveSecrets(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("ResolveSecrets error: %v", err)
	}
	if s.Stability != "sk" || s.Instagram != "ig" || s.OpenAI != "" {
		t.Fatalf("secrets = %+v", s)
	}
}

func TestHashtagsCoverEveryBackend(t *testing.T) {
	for _, name := range []string{BackendStability, BackendOpenAI, BackendImagen} {
		if !strings.HasPrefix(hashtags[name], "#") {
			t.Fatalf("missing hashtags for %s", name)
		}
	}
}
