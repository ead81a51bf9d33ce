package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int

	AccountID        string
	InstagramToken   string
	InstagramBaseURL string
	ThreadsUserID    string
	ThreadsToken     string
	ThreadsBaseURL   string
	GraphMinInterval time.Duration

	StabilityAPIKey  string
	StabilityEngine  string
	StabilityBaseURL string

	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIImageModel string
	OpenAIBaseURL    string
	OpenAIOrg        string

	GeminiAPIKey     string
	CaptionModel     string
	ImagenModel      string
	PromptProvider   string
	CaptionProvider  string
	CaptionStreaming bool

	StorageEndpoint      string
	StorageAccessKey     string
	StorageSecretKey     string
	StorageUseSSL        bool
	StorageRegion        string
	StorageBucket        string
	StoragePublicBaseURL string
	ArtifactDir          string

	ScheduleInterval time.Duration
	ScheduleBackends []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		AccountID:        strings.TrimSpace(os.Getenv("INSTA_BUSINESS_ACCOUNT_ID")),
		InstagramToken:   strings.TrimSpace(os.Getenv("INSTA_PAGE_ACCESS_TOKEN")),
		InstagramBaseURL: getEnv("INSTAGRAM_BASE_URL", "https://graph.instagram.com/v22.0"),
		ThreadsUserID:    strings.TrimSpace(os.Getenv("THREADS_USER_ID")),
		ThreadsToken:     strings.TrimSpace(os.Getenv("THREADS_API_TOKEN")),
		ThreadsBaseURL:   getEnv("THREADS_BASE_URL", "https://graph.threads.net/v1.0"),
		GraphMinInterval: time.Millisecond * time.Duration(getEnvInt("GRAPH_MIN_INTERVAL_MS", 0)),

		StabilityAPIKey:  strings.TrimSpace(os.Getenv("STABILITY_KEY")),
		StabilityEngine:  getEnv("STABILITY_ENGINE", "stable-diffusion-xl-1024-v1-0"),
		StabilityBaseURL: getEnv("STABILITY_BASE_URL", "https://api.stability.ai"),

		OpenAIAPIKey:     strings.TrimSpace(getEnv("OPENAI_API_KEY", os.Getenv("OPENAI_TOKEN"))),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIImageModel: getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:        os.Getenv("OPENAI_ORG"),

		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		CaptionModel:     getEnv("CAPTION_MODEL", "gemini-2.5-flash"),
		ImagenModel:      getEnv("IMAGEN_MODEL", "imagen-3.0-generate-002"),
		PromptProvider:   strings.ToLower(getEnv("PROMPT_PROVIDER", "openai")),
		CaptionProvider:  strings.ToLower(getEnv("CAPTION_PROVIDER", "gemini")),
		CaptionStreaming: getEnvBool("CAPTION_STREAMING", true),

		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", "storage.googleapis.com"),
		StorageAccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey: os.Getenv("STORAGE_SECRET_KEY"),
		StorageUseSSL:    getEnvBool("STORAGE_USE_SSL", true),
		StorageRegion:    getEnv("STORAGE_REGION", "auto"),
		StorageBucket:    getEnv("STORAGE_BUCKET", "ai-bot-app-insta"),
		ArtifactDir:      getEnv("ARTIFACT_DIR", os.TempDir()),

		ScheduleInterval: getEnvDuration("SCHEDULE_INTERVAL", 6*time.Hour),
		ScheduleBackends: getEnvList("SCHEDULE_BACKENDS", []string{"stability", "openai", "imagen"}),
	}

	cfg.StoragePublicBaseURL = strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", defaultPublicBaseURL(cfg.StorageEndpoint, cfg.StorageUseSSL)), "/")

	switch cfg.PromptProvider {
	case "openai", "gemini":
	default:
		return nil, fmt.Errorf("PROMPT_PROVIDER %q is not supported", cfg.PromptProvider)
	}
	switch cfg.CaptionProvider {
	case "openai", "gemini":
	default:
		return nil, fmt.Errorf("CAPTION_PROVIDER %q is not supported", cfg.CaptionProvider)
	}
	if cfg.StorageBucket == "" {
		return nil, fmt.Errorf("STORAGE_BUCKET is required")
	}

	return cfg, nil
}

// ValidatePublishing checks the settings every publishing binary needs.
func (c *Config) ValidatePublishing() error {
	var missing []string
	if c.AccountID == "" {
		missing = append(missing, "INSTA_BUSINESS_ACCOUNT_ID")
	}
	if c.InstagramToken == "" {
		missing = append(missing, "INSTA_PAGE_ACCESS_TOKEN")
	}
	if c.ThreadsUserID == "" {
		missing = append(missing, "THREADS_USER_ID")
	}
	if c.ThreadsToken == "" {
		missing = append(missing, "THREADS_API_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required", strings.Join(missing, ", "))
	}
	return nil
}

func defaultPublicBaseURL(endpoint string, useSSL bool) string {
	endpoint = strings.TrimSpace(endpoint)
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
