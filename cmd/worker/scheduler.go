package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autopost/internal/infra"
	"autopost/internal/pipeline"
	"autopost/internal/providers/prompt"
)

type runner interface {
	Run(ctx context.Context, backend string, mode prompt.Mode) (*pipeline.Result, error)
	HasBackend(name string) bool
}

// scheduler triggers one run per tick, rotating through backends. Ticks are skipped, not
// queued, while a run is still in progress.
type scheduler struct {
	runner   runner
	backends []string
	interval time.Duration
	logger   *infra.Logger
	next     int
}

func newScheduler(r runner, backends []string, interval time.Duration, logger *infra.Logger) (*scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("schedule interval must be positive, got %s", interval)
	}
	var usable []string
	for _, b := range backends {
		if r.HasBackend(b) {
			usable = append(usable, b)
			continue
		}
		logger.Warn().Str("backend", b).Msg("scheduled backend is not configured; skipping")
	}
	if len(usable) == 0 {
		return nil, errors.New("no scheduled backend is configured")
	}
	return &scheduler{runner: r, backends: usable, interval: interval, logger: logger}, nil
}

func (s *scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs the next backend in rotation. Failures are logged; the rotation advances anyway.
func (s *scheduler) tick(ctx context.Context) {
	backend := s.backends[s.next%len(s.backends)]
	s.next++
	res, err := s.runner.Run(ctx, backend, "")
	if err != nil {
		s.logger.Error().Err(err).Str("backend", backend).Msg("scheduled run failed")
		return
	}
	s.logger.Info().Str("backend", backend).Str("run_id", res.RunID).Str("public_url", res.PublicURL).Msg("scheduled run ok")
}
