package hashfinder

import (
	"fmt"
	"strings"
)

// DefaultDifficulty is 5 leading zero hex characters, i.e. 20 zero bits.
const DefaultDifficulty = 5

// Granularity selects the unit a difficulty is counted in.
type Granularity uint8

const (
	// Nibble counts leading zero hexadecimal characters (4 bits each).
	Nibble Granularity = iota
	// Bit counts leading zero bits exactly.
	Bit
)

func (g Granularity) String() string {
	switch g {
	case Nibble:
		return "nibble"
	case Bit:
		return "bit"
	}
	return fmt.Sprintf("Granularity(%d)", uint8(g))
}

// MaxDifficulty is the largest satisfiable difficulty for a digest of
// DigestSize bytes.
func (g Granularity) MaxDifficulty() uint {
	if g == Bit {
		return 8 * DigestSize
	}
	return 2 * DigestSize
}

// ParseGranularity accepts "nibble"/"hex" and "bit"/"bits".
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nibble", "nibbles", "hex":
		return Nibble, nil
	case "bit", "bits":
		return Bit, nil
	}
	return 0, &ConfigError{Field: "granularity", Value: s, Err: ErrUnknownGranularity}
}

// Satisfies reports whether d starts with difficulty zero units. A difficulty
// of zero is always satisfied and one above the digest width never is.
func Satisfies(d Digest, difficulty uint, g Granularity) bool {
	if g == Bit {
		return hasLeadingZeroBits(d[:], difficulty)
	}
	return hasLeadingZeroNibbles(d[:], difficulty)
}

// hasLeadingZeroNibbles is equivalent to checking that the first n characters
// of hex.EncodeToString(data) are all '0', without allocating.
func hasLeadingZeroNibbles(data []byte, n uint) bool {
	if n > uint(2*len(data)) {
		return false
	}
	full := n / 2
	for _, b := range data[:full] {
		if b != 0 {
			return false
		}
	}
	if n%2 == 1 && data[full]>>4 != 0 {
		return false
	}
	return true
}

func hasLeadingZeroBits(data []byte, n uint) bool {
	if n > uint(8*len(data)) {
		return false
	}
	fullBytes := n / 8
	remainBits := n % 8

	for _, b := range data[:fullBytes] {
		if b != 0 {
			return false
		}
	}

	if remainBits > 0 {
		// remainBits=3 -> mask=0b11100000
		mask := byte(0xFF << (8 - remainBits))
		if data[fullBytes]&mask != 0 {
			return false
		}
	}

	return true
}
