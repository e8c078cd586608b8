package usecases

import (
	"crypto/rand"
	"fmt"
	"strings"

	"powaccount/internal/domain"
	"powaccount/pkg/pow/argon2"
	"powaccount/pkg/pow/hashfinder"
)

// NewHasher resolves an algorithm name, including the memory-hard argon2id
// which needs its cost parameters.
func NewHasher(algorithm string, argonParams argon2.Params) (hashfinder.Hasher, error) {
	if strings.EqualFold(strings.TrimSpace(algorithm), argon2.Name) {
		h, err := argon2.New(argonParams)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize argon2: %w", err)
		}
		return h, nil
	}
	return hashfinder.HasherByName(algorithm)
}

// NewFinder builds the finder that matches a challenge. Its searches only
// produce origins that start with the challenge nonce.
func NewFinder(ch domain.Challenge, argonParams argon2.Params) (*hashfinder.HashFinder, error) {
	hasher, err := NewHasher(ch.Algorithm, argonParams)
	if err != nil {
		return nil, err
	}
	return hashfinder.New(uint(ch.Difficulty),
		hashfinder.WithMode(ch.Mode),
		hashfinder.WithGranularity(ch.Granularity),
		hashfinder.WithHasher(hasher),
		hashfinder.WithSampler(nonceSamplers(ch.Nonce)),
	)
}

// nonceSamplers counts behind nonce and a random middle part, so parallel
// workers walk disjoint spaces.
func nonceSamplers(nonce domain.Nonce) hashfinder.SamplerFactory {
	return func() hashfinder.Sampler {
		var prefix [hashfinder.CounterPrefixSize]byte
		copy(prefix[:], nonce[:])
		if _, err := rand.Read(prefix[domain.NonceSize:]); err != nil {
			panic(fmt.Sprintf("usecases: read system entropy: %v", err))
		}
		return hashfinder.NewCounterSampler(prefix)
	}
}
