package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"autopost/internal/domain"
	"autopost/internal/infra"
	"autopost/internal/pipeline"
	"autopost/internal/providers/prompt"
)

// Runner executes pipeline runs.
type Runner interface {
	Run(ctx context.Context, backend string, mode prompt.Mode) (*pipeline.Result, error)
	Backends() []string
	HasBackend(name string) bool
}

// RunLister reads the run ledger.
type RunLister interface {
	ListRecent(ctx context.Context, limit int) ([]domain.Run, error)
}

type App struct {
	Runner Runner
	// Runs is nil when no database is configured.
	Runs   RunLister
	Logger *infra.Logger
}

func NewApp(runner Runner, runs RunLister, logger *infra.Logger) *App {
	if logger == nil {
		l := zerolog.New(io.Discard)
		logger = &l
	}
	return &App{Runner: runner, Runs: runs, Logger: logger}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func (a *App) text(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}

// log prefers the request-scoped logger installed by the access log middleware.
func (a *App) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return a.Logger
}
