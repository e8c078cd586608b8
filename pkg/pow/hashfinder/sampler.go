package hashfinder

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand/v2"
)

// OriginSize is the width in bytes of a searched origin.
const OriginSize = 32

// Origin is a candidate value whose digest is tested against the difficulty.
type Origin [OriginSize]byte

// Sampler produces candidate origins. A Sampler is used by a single search
// goroutine at a time and need not be safe for concurrent use.
type Sampler interface {
	Next() Origin
}

// SamplerFactory creates an independent Sampler for each search.
type SamplerFactory func() Sampler

// RandomSampler draws every origin from crypto/rand.
type RandomSampler struct{}

// NewRandomSampler returns the production sampler.
func NewRandomSampler() Sampler {
	return RandomSampler{}
}

func (RandomSampler) Next() Origin {
	var o Origin
	mustRead(o[:])
	return o
}

// CounterPrefixSize is the fixed part of a CounterSampler origin.
const CounterPrefixSize = OriginSize - 8

// CounterSampler walks an incrementing space: a fixed prefix followed by a
// big-endian trial counter.
type CounterSampler struct {
	prefix [CounterPrefixSize]byte
	n      uint64
}

// NewCounterSampler starts counting from zero behind prefix.
func NewCounterSampler(prefix [CounterPrefixSize]byte) *CounterSampler {
	return &CounterSampler{prefix: prefix}
}

// NewRandomCounterSampler picks the prefix from crypto/rand, so two samplers
// never share a search space in practice.
func NewRandomCounterSampler() Sampler {
	var prefix [CounterPrefixSize]byte
	mustRead(prefix[:])
	return NewCounterSampler(prefix)
}

func (s *CounterSampler) Next() Origin {
	var o Origin
	copy(o[:CounterPrefixSize], s.prefix[:])
	binary.BigEndian.PutUint64(o[CounterPrefixSize:], s.n)
	s.n++
	return o
}

// SeededSampler is a deterministic ChaCha8 stream. It is predictable by
// construction and only meant for tests and benchmarks.
type SeededSampler struct {
	src *mrand.ChaCha8
}

func NewSeededSampler(seed [32]byte) *SeededSampler {
	return &SeededSampler{src: mrand.NewChaCha8(seed)}
}

func (s *SeededSampler) Next() Origin {
	var o Origin
	// ChaCha8.Read never fails.
	_, _ = s.src.Read(o[:])
	return o
}

// mustRead fills p from the system CSPRNG. Running out of entropy is not
// recoverable for a proof-of-work producer.
func mustRead(p []byte) {
	if _, err := rand.Read(p); err != nil {
		panic(fmt.Sprintf("hashfinder: read system entropy: %v", err))
	}
}
