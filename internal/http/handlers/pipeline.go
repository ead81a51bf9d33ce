package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"autopost/internal/domain"
	"autopost/internal/pipeline"
	"autopost/internal/providers/prompt"
)

const (
	okToken        = "ok"
	noImageMessage = "No image generated"
)

type runResponse struct {
	RunID           string `json:"run_id"`
	Backend         string `json:"backend"`
	Mode            string `json:"mode"`
	Prompt          string `json:"prompt"`
	PublicURL       string `json:"public_url"`
	Caption         string `json:"caption"`
	CaptionDegraded bool   `json:"caption_degraded"`
	ContentFiltered bool   `json:"content_filtered"`
}

// Trigger returns the no-body trigger for one backend: "ok" with 200 on success and
// "No image generated" with 500 when the backend produced nothing.
func (a *App) Trigger(backend string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := a.Runner.Run(r.Context(), backend, "")
		if err != nil {
			status, message := a.failure(r, backend, err)
			a.text(w, status, message)
			return
		}
		a.text(w, http.StatusOK, okToken)
	}
}

// RunPipeline serves GET /v1/pipelines/{backend}/run?mode=.
func (a *App) RunPipeline(w http.ResponseWriter, r *http.Request) {
	backend := chi.URLParam(r, "backend")
	if !a.Runner.HasBackend(backend) {
		a.error(w, http.StatusNotFound, "not_found", "unknown backend "+backend)
		return
	}
	var mode prompt.Mode
	if raw := r.URL.Query().Get("mode"); raw != "" {
		parsed, err := prompt.ParseMode(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		mode = parsed
	}
	res, err := a.Runner.Run(r.Context(), backend, mode)
	if err != nil {
		status, message := a.failure(r, backend, err)
		a.error(w, status, errorCode(status, err), message)
		return
	}
	a.json(w, http.StatusOK, runResponse{
		RunID:           res.RunID,
		Backend:         res.Backend,
		Mode:            string(res.Mode),
		Prompt:          res.Request.Text(),
		PublicURL:       res.PublicURL,
		Caption:         res.Caption.Text,
		CaptionDegraded: res.Caption.Degraded,
		ContentFiltered: res.ContentFiltered,
	})
}

func (a *App) failure(r *http.Request, backend string, err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnknownBackend):
		return http.StatusNotFound, "unknown backend " + backend
	case errors.Is(err, domain.ErrNoArtifactProduced):
		return http.StatusInternalServerError, noImageMessage
	}
	var stageErr *pipeline.StageError
	stage := "run"
	if errors.As(err, &stageErr) {
		stage = string(stageErr.Stage)
	}
	a.log(r.Context()).Error().Err(err).Str("backend", backend).Str("stage", stage).Msg("pipeline trigger failed")
	return http.StatusInternalServerError, strings.ReplaceAll(stage, "_", " ") + " failed"
}

func errorCode(status int, err error) string {
	switch {
	case status == http.StatusNotFound:
		return "not_found"
	case errors.Is(err, domain.ErrNoArtifactProduced):
		return "no_image"
	case errors.Is(err, domain.ErrUploadFailure):
		return "upload_failed"
	case errors.Is(err, domain.ErrPublishFailure):
		return "publish_failed"
	default:
		return "internal"
	}
}
