package domain

import "time"

// RunStatus enumerates pipeline run lifecycle states.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusOK      RunStatus = "ok"
	RunStatusFailed  RunStatus = "failed"
)

// Run captures one end-to-end pipeline execution for the run ledger.
type Run struct {
	ID              string
	Backend         string
	Mode            string
	Status          RunStatus
	Stage           string
	Prompt          string
	PublicURL       string
	Caption         string
	ContentFiltered bool
	ErrorMessage    string
	StartedAt       time.Time
	FinishedAt      *time.Time
}
