package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"powaccount/internal/domain"
	"powaccount/pkg/pow/argon2"
	"powaccount/pkg/pow/hashfinder"
)

var ErrDifficultyTooHigh = errors.New("announced difficulty exceeds client limit")

// SolverUsecase is the producing side: it searches for an origin that meets a
// challenge.
type SolverUsecase interface {
	Solve(ctx context.Context, ch domain.Challenge) (*domain.Solution, error)
}

// SolverConfig bounds how much work the client is willing to do.
type SolverConfig struct {
	// MaxDifficulty refuses challenges above it. Zero means no limit.
	MaxDifficulty uint32
	// Workers is the number of parallel search goroutines; <= 0 uses GOMAXPROCS.
	Workers int
	// MaxTrials caps a search; zero means bounded by ctx only.
	MaxTrials uint64
	Argon2    argon2.Params
}

type solverUsecaseImpl struct {
	cfg SolverConfig
}

func NewSolverUsecase(cfg SolverConfig) SolverUsecase {
	return &solverUsecaseImpl{cfg: cfg}
}

func (s *solverUsecaseImpl) Solve(ctx context.Context, ch domain.Challenge) (*domain.Solution, error) {
	if s.cfg.MaxDifficulty > 0 && ch.Difficulty > s.cfg.MaxDifficulty {
		return nil, fmt.Errorf("%w: %d > %d", ErrDifficultyTooHigh, ch.Difficulty, s.cfg.MaxDifficulty)
	}

	finder, err := NewFinder(ch, s.cfg.Argon2)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hashfinder: %w", err)
	}

	start := time.Now()
	var res hashfinder.Result
	// A trial budget only applies to a single search loop.
	if s.cfg.MaxTrials > 0 || s.cfg.Workers == 1 {
		res, err = finder.Search(ctx, s.cfg.MaxTrials)
	} else {
		res, err = finder.FindParallel(ctx, s.cfg.Workers)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find origin after %d trials: %w", res.Trials, err)
	}

	return &domain.Solution{
		Origin:  hashfinder.Encode(res.Origin),
		Trials:  res.Trials,
		Elapsed: time.Since(start),
	}, nil
}
