package hashfinder

import (
	"crypto/sha256"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2s"
)

// DigestSize is the width in bytes of every supported digest.
const DigestSize = 32

// Digest is the fixed width output of a Hasher.
type Digest [DigestSize]byte

// Hasher is the digest function applied to origins. Implementations must be
// deterministic and safe for concurrent use.
type Hasher interface {
	Name() string
	Sum(p []byte) Digest
}

const (
	AlgorithmBlake2s = "blake2s"
	AlgorithmSHA256  = "sha256"
	AlgorithmBlake3  = "blake3"
)

type blake2sHasher struct{}

func (blake2sHasher) Name() string        { return AlgorithmBlake2s }
func (blake2sHasher) Sum(p []byte) Digest { return blake2s.Sum256(p) }

type sha256Hasher struct{}

func (sha256Hasher) Name() string        { return AlgorithmSHA256 }
func (sha256Hasher) Sum(p []byte) Digest { return sha256.Sum256(p) }

type blake3Hasher struct{}

func (blake3Hasher) Name() string        { return AlgorithmBlake3 }
func (blake3Hasher) Sum(p []byte) Digest { return blake3.Sum256(p) }

// Blake2s returns the BLAKE2s-256 hasher. It is the default.
func Blake2s() Hasher { return blake2sHasher{} }

// SHA256 returns the SHA-256 hasher.
func SHA256() Hasher { return sha256Hasher{} }

// Blake3 returns the BLAKE3 hasher with 256-bit output.
func Blake3() Hasher { return blake3Hasher{} }

// HasherByName resolves one of the built in algorithm names, case-insensitively.
func HasherByName(name string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case AlgorithmBlake2s, "blake2s256", "blake2s-256":
		return Blake2s(), nil
	case AlgorithmSHA256, "sha-256":
		return SHA256(), nil
	case AlgorithmBlake3:
		return Blake3(), nil
	}
	return nil, &ConfigError{Field: "algorithm", Value: name, Err: ErrUnknownHasher}
}
