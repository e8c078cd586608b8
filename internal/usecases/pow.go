package usecases

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"powaccount/internal/domain"
	"powaccount/pkg/pow/argon2"
	"powaccount/pkg/pow/hashfinder"
)

var ErrNonceMismatch = errors.New("origin does not start with the challenge nonce")

// AdmissionUsecase is the verifying side: it announces the parameters and
// checks submitted origins.
type AdmissionUsecase interface {
	// Challenge returns the configured parameters bound to nonce.
	Challenge(nonce domain.Nonce) domain.Challenge
	// Admit reports whether the hex origin starts with nonce and meets the
	// configured difficulty. Malformed input is returned as a
	// *hashfinder.ParseError and a foreign nonce as ErrNonceMismatch.
	Admit(nonce domain.Nonce, origin string) (bool, error)
}

type admissionUsecaseImpl struct {
	finder    *hashfinder.HashFinder
	challenge domain.Challenge
}

// NewAdmissionUsecase validates the parameters once, at startup.
func NewAdmissionUsecase(ch domain.Challenge, argonParams argon2.Params) (AdmissionUsecase, error) {
	finder, err := NewFinder(ch, argonParams)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hashfinder: %w", err)
	}
	ch.Algorithm = finder.Hasher().Name()
	ch.Nonce = domain.Nonce{}

	return &admissionUsecaseImpl{
		finder:    finder,
		challenge: ch,
	}, nil
}

// ParseChallenge turns textual configuration into a challenge.
func ParseChallenge(difficulty uint, mode, algorithm, granularity string) (domain.Challenge, error) {
	m, err := hashfinder.ParseMode(mode)
	if err != nil {
		return domain.Challenge{}, err
	}
	g, err := hashfinder.ParseGranularity(granularity)
	if err != nil {
		return domain.Challenge{}, err
	}
	if difficulty > math.MaxUint32 {
		return domain.Challenge{}, &hashfinder.ConfigError{Field: "difficulty", Value: difficulty, Err: hashfinder.ErrDifficultyRange}
	}
	return domain.Challenge{
		Difficulty:  uint32(difficulty),
		Mode:        m,
		Granularity: g,
		Algorithm:   algorithm,
	}, nil
}

func (a *admissionUsecaseImpl) Challenge(nonce domain.Nonce) domain.Challenge {
	ch := a.challenge
	ch.Nonce = nonce
	return ch
}

func (a *admissionUsecaseImpl) Admit(nonce domain.Nonce, origin string) (bool, error) {
	// The nonce is compared before any digest is computed. Inputs too short
	// to carry one are left to Check for a parse error.
	if len(origin) == 2*hashfinder.OriginSize {
		prefix, err := hex.DecodeString(origin[:2*domain.NonceSize])
		if err == nil && !bytes.Equal(prefix, nonce[:]) {
			return false, ErrNonceMismatch
		}
	}
	return a.finder.Check(origin)
}
