package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"powaccount/config"
	"powaccount/internal/server/tcp"
	"powaccount/internal/usecases"
)

const (
	ErrPowInit   = "failed to initialize pow"
	ErrRunServer = "failed server run"
)

// RunServer started server application
func RunServer(ctx context.Context) error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.Default()
	logger = logger.With("Service", cfg.Server.Name)

	challenge, err := usecases.ParseChallenge(cfg.Pow.Difficulty, cfg.Pow.Mode, cfg.Pow.Algorithm, cfg.Pow.Granularity)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrPowInit, err)
	}
	admission, err := usecases.NewAdmissionUsecase(challenge, cfg.Pow.Argon2.Params())
	if err != nil {
		return fmt.Errorf("%s: %w", ErrPowInit, err)
	}

	nonces, err := tcp.NewNonceStore(ctx, cfg.Server.ChallengeTTL)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrPowInit, err)
	}
	defer nonces.Close()

	server := tcp.NewServer(
		&tcp.Config{
			Address:     cfg.Server.Addr,
			KeepAlive:   cfg.Server.KeepAlive,
			Deadline:    cfg.Server.Deadline,
			MaxLineSize: cfg.Server.MaxLineSize,
		},
		admission,
		usecases.NewTicketUsecase(),
		nonces,
		logger,
	)

	if err = server.Run(ctx); err != nil {
		if errors.Is(err, tcp.ErrServerShutdown) {
			logger.Info("server stopped")
			return nil
		}
		return fmt.Errorf("%s: %w", ErrRunServer, err)
	}

	return nil
}
