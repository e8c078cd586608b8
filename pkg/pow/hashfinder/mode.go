package hashfinder

import (
	"fmt"
	"strings"
)

// Mode is the number of digest rounds between a transmitted origin and the
// digest that has to meet the difficulty.
type Mode uint8

const (
	// SingleRound tests digest(origin). It is the check pow-account deployments
	// perform: their producer derives the origin from entropy with one digest
	// and the verifier hashes the submitted origin once more. Pick SingleRound,
	// not TwoRound, to interoperate with them.
	SingleRound Mode = 1
	// TwoRound tests digest(digest(origin)).
	TwoRound Mode = 2
)

// Rounds returns how many times the verifier hashes a submitted origin.
func (m Mode) Rounds() int {
	return int(m)
}

func (m Mode) String() string {
	switch m {
	case SingleRound:
		return "single-round"
	case TwoRound:
		return "two-round"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

func (m Mode) valid() bool {
	return m == SingleRound || m == TwoRound
}

// ParseMode accepts "single", "single-round", "1", "two", "two-round" and "2".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single", "single-round", "1":
		return SingleRound, nil
	case "two", "two-round", "double", "2":
		return TwoRound, nil
	}
	return 0, &ConfigError{Field: "mode", Value: s, Err: ErrUnknownMode}
}
