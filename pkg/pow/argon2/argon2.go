package argon2

/*
	Argon2id as a proof-of-work digest:

	Argon2 is a memory-hard key derivation function. Used as the digest of an
	origin search it makes every trial cost Memory KiB of RAM as well as CPU
	time, which blunts GPU and ASIC advantages. The salt is a fixed domain
	string, so the function stays deterministic and verification is a single
	derivation (two in two-round mode).

	Every trial of a search pays the full cost, so the parameters here are far
	lighter than password hashing settings. Producer and verifier must agree on
	all of them.
*/

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"

	"powaccount/pkg/pow/hashfinder"
)

const (
	DefaultTime    = 1        // Number of iterations (time cost)
	DefaultMemory  = 8 * 1024 // Memory usage in KiB (8MB)
	DefaultThreads = 1        // Lanes per derivation; searches parallelize across origins instead
	DefaultSalt    = "powaccount/argon2id/v1"

	// Name is reported by Hasher.Name and accepted in configuration.
	Name = "argon2id"
)

var ErrInvalidParams = errors.New("invalid argon2 parameters")

// Params are the Argon2id cost settings.
type Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	Salt    []byte
}

// DefaultParams returns the settings used when none are configured.
func DefaultParams() Params {
	return Params{
		Time:    DefaultTime,
		Memory:  DefaultMemory,
		Threads: DefaultThreads,
		Salt:    []byte(DefaultSalt),
	}
}

// Hasher derives a hashfinder.Digest with Argon2id.
type Hasher struct {
	params Params
}

var (
	_ hashfinder.Hasher = (*Hasher)(nil)
	_ hashfinder.Pacer  = (*Hasher)(nil)
)

// New validates p and returns a hasher for it.
func New(p Params) (*Hasher, error) {
	if p.Time < 1 {
		return nil, fmt.Errorf("%w: time must be at least 1", ErrInvalidParams)
	}
	if p.Threads < 1 {
		return nil, fmt.Errorf("%w: threads must be at least 1", ErrInvalidParams)
	}
	if p.Memory < 8*uint32(p.Threads) {
		return nil, fmt.Errorf("%w: memory must be at least %d KiB for %d threads", ErrInvalidParams, 8*uint32(p.Threads), p.Threads)
	}
	if len(p.Salt) < 8 {
		return nil, fmt.Errorf("%w: salt must be at least 8 bytes", ErrInvalidParams)
	}

	salt := make([]byte, len(p.Salt))
	copy(salt, p.Salt)
	p.Salt = salt

	return &Hasher{params: p}, nil
}

func (h *Hasher) Name() string {
	return Name
}

func (h *Hasher) Sum(p []byte) hashfinder.Digest {
	var d hashfinder.Digest
	key := argon2.IDKey(p, h.params.Salt, h.params.Time, h.params.Memory, h.params.Threads, hashfinder.DigestSize)
	copy(d[:], key)
	return d
}

// CheckEvery asks searches to look at their context after every derivation.
func (h *Hasher) CheckEvery() uint64 {
	return 1
}

// Params returns a copy of the configured parameters.
func (h *Hasher) Params() Params {
	p := h.params
	p.Salt = append([]byte(nil), h.params.Salt...)
	return p
}
