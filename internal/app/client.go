package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"powaccount/config"
	"powaccount/internal/client/tcp"
	"powaccount/internal/usecases"
)

// RunClient started client application
func RunClient(ctx context.Context) error {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.Default()
	logger = logger.With("Service", cfg.Client.Name)

	solver := usecases.NewSolverUsecase(usecases.SolverConfig{
		MaxDifficulty: cfg.Client.MaxDifficulty,
		Workers:       cfg.Client.Workers,
		MaxTrials:     cfg.Client.MaxTrials,
		Argon2:        cfg.Argon2.Params(),
	})

	client := tcp.NewClient(
		&tcp.Config{
			ServerAddr:     cfg.Client.ServerAddr,
			ConnectTimeout: 5 * time.Second,
			RequestTimeout: cfg.Client.RequestTimeout,
			RetryAttempts:  3,
			RetryDelay:     5 * time.Second,
			Sessions:       cfg.Client.Sessions,
		},
		solver,
		logger,
	)
	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start client: %w", err)
	}

	return nil
}
