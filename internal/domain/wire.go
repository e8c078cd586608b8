package domain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"powaccount/pkg/pow/hashfinder"
)

const maxAlgorithmLen = 32

var ErrInvalidHeader = errors.New("invalid challenge header")

// fixedHeaderSize covers mode, granularity, difficulty, nonce and the
// algorithm name length.
const fixedHeaderSize = 1 + 1 + 4 + NonceSize + 1

// WriteChallenge encodes the header a server sends first:
// mode (1 byte), granularity (1 byte), difficulty (uint32 BE), nonce
// (NonceSize bytes), algorithm name length (1 byte) and the name.
func WriteChallenge(w io.Writer, ch Challenge) error {
	if len(ch.Algorithm) == 0 || len(ch.Algorithm) > maxAlgorithmLen {
		return fmt.Errorf("%w: algorithm name length %d", ErrInvalidHeader, len(ch.Algorithm))
	}

	buf := make([]byte, 0, fixedHeaderSize+len(ch.Algorithm))
	buf = append(buf, byte(ch.Mode), byte(ch.Granularity))
	buf = binary.BigEndian.AppendUint32(buf, ch.Difficulty)
	buf = append(buf, ch.Nonce[:]...)
	buf = append(buf, byte(len(ch.Algorithm)))
	buf = append(buf, ch.Algorithm...)

	_, err := w.Write(buf)
	return err
}

// ReadChallenge decodes a header written by WriteChallenge.
func ReadChallenge(r io.Reader) (Challenge, error) {
	var fixed [fixedHeaderSize]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return Challenge{}, err
	}

	ch := Challenge{
		Mode:        hashfinder.Mode(fixed[0]),
		Granularity: hashfinder.Granularity(fixed[1]),
		Difficulty:  binary.BigEndian.Uint32(fixed[2:6]),
	}
	copy(ch.Nonce[:], fixed[6:6+NonceSize])
	if ch.Mode != hashfinder.SingleRound && ch.Mode != hashfinder.TwoRound {
		return Challenge{}, fmt.Errorf("%w: mode %d", ErrInvalidHeader, fixed[0])
	}
	if ch.Granularity != hashfinder.Nibble && ch.Granularity != hashfinder.Bit {
		return Challenge{}, fmt.Errorf("%w: granularity %d", ErrInvalidHeader, fixed[1])
	}

	n := int(fixed[fixedHeaderSize-1])
	if n == 0 || n > maxAlgorithmLen {
		return Challenge{}, fmt.Errorf("%w: algorithm name length %d", ErrInvalidHeader, n)
	}
	name := make([]byte, n)
	if _, err := io.ReadFull(r, name); err != nil {
		return Challenge{}, err
	}
	ch.Algorithm = string(name)

	return ch, nil
}
