package hashfinder

import (
	"errors"
	"fmt"
)

var (
	ErrDifficultyRange    = errors.New("difficulty out of acceptable range")
	ErrUnknownMode        = errors.New("unknown mode")
	ErrUnknownHasher      = errors.New("unknown hash algorithm")
	ErrUnknownGranularity = errors.New("unknown granularity")
	ErrNilOption          = errors.New("option value must not be nil")

	ErrInvalidHex  = errors.New("invalid hexadecimal character")
	ErrOddLength   = errors.New("odd length hex string")
	ErrOriginWidth = errors.New("unexpected origin width")

	// ErrBudgetExhausted is returned when a bounded search ran out of trials
	// before any candidate satisfied the difficulty.
	ErrBudgetExhausted = errors.New("no origin found within trial budget")
)

// ConfigError reports a construction parameter that can never produce a
// working finder.
type ConfigError struct {
	Field string
	Value any
	Err   error
	Info  string
}

func (e *ConfigError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("hashfinder: %s=%v: %v (%s)", e.Field, e.Value, e.Err, e.Info)
	}
	return fmt.Sprintf("hashfinder: %s=%v: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// maxEchoed bounds how much of a rejected input is copied into error text.
const maxEchoed = 80

// ParseError reports a Check input that is not a well formed origin.
type ParseError struct {
	Input  string
	Length int
	// Offset is the byte offset of the first invalid character, or -1.
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	input := e.Input
	if len(input) > maxEchoed {
		input = input[:maxEchoed] + "..."
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("hashfinder: parse %q (length %d): %v %q at offset %d",
			input, e.Length, e.Err, e.Input[e.Offset], e.Offset)
	}
	return fmt.Sprintf("hashfinder: parse %q (length %d): %v", input, e.Length, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err came from decoding a Check input.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsConfigError reports whether err came from invalid finder configuration.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
