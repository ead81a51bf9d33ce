package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"autopost/internal/http/handlers"
	"autopost/internal/middleware"
)

// legacyTriggers maps the first-generation trigger paths to backend names.
var legacyTriggers = map[string]string{
	"/stability_post_insta": "stability",
	"/openai_post_insta":    "openai",
	"/imagen_post_insta":    "imagen",
}

type RouterOptions struct {
	Logger zerolog.Logger
	// RateLimitPerMin bounds trigger requests per client; 0 disables it.
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
	)

	// Health
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/runs", app.ListRuns)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		for path, backend := range legacyTriggers {
			if app.Runner.HasBackend(backend) {
				r.Get(path, app.Trigger(backend))
			}
		}
		r.Get("/v1/pipelines/{backend}/run", app.RunPipeline)
	})

	return r
}
