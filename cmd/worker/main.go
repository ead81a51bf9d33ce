package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"autopost/internal/bootstrap"
	"autopost/internal/infra"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graph, err := bootstrap.Build(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to build pipeline")
	}
	defer graph.Close()

	sched, err := newScheduler(graph.Pipeline, cfg.ScheduleBackends, cfg.ScheduleInterval, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: invalid schedule")
	}
	logger.Info().Strs("backends", sched.backends).Dur("interval", cfg.ScheduleInterval).Msg("worker started")
	sched.run(ctx)
	logger.Info().Msg("worker stopped")
}
