package handlers

import (
	"net/http"
	"strconv"
	"time"

	"autopost/internal/domain"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

type runView struct {
	ID              string     `json:"id"`
	Backend         string     `json:"backend"`
	Mode            string     `json:"mode"`
	Status          string     `json:"status"`
	Stage           string     `json:"stage"`
	Prompt          string     `json:"prompt,omitempty"`
	PublicURL       string     `json:"public_url,omitempty"`
	Caption         string     `json:"caption,omitempty"`
	ContentFiltered bool       `json:"content_filtered"`
	Error           string     `json:"error,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

// ListRuns serves GET /v1/runs?limit=N.
func (a *App) ListRuns(w http.ResponseWriter, r *http.Request) {
	if a.Runs == nil {
		a.error(w, http.StatusServiceUnavailable, "ledger_disabled", "run ledger requires DATABASE_URL")
		return
	}
	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunLimit)
	}
	runs, err := a.Runs.ListRecent(r.Context(), limit)
	if err != nil {
		a.log(r.Context()).Error().Err(err).Msg("list runs failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load runs")
		return
	}
	items := make([]runView, 0, len(runs))
	for _, run := range runs {
		items = append(items, toRunView(run))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func toRunView(run domain.Run) runView {
	return runView{
		ID:              run.ID,
		Backend:         run.Backend,
		Mode:            run.Mode,
		Status:          string(run.Status),
		Stage:           run.Stage,
		Prompt:          run.Prompt,
		PublicURL:       run.PublicURL,
		Caption:         run.Caption,
		ContentFiltered: run.ContentFiltered,
		Error:           run.ErrorMessage,
		StartedAt:       run.StartedAt,
		FinishedAt:      run.FinishedAt,
	}
}
