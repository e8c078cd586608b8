package domain

import (
	"time"

	"powaccount/pkg/pow/hashfinder"
)

// NonceSize is the width of the per-connection nonce. Every admitted origin
// starts with the nonce of the challenge it answers.
const NonceSize = 16

// Nonce is issued by the server for a single connection and expires with it.
type Nonce [NonceSize]byte

// Challenge carries the parameters a server announces before it accepts an
// origin, plus the nonce the origin has to start with.
type Challenge struct {
	Difficulty  uint32
	Mode        hashfinder.Mode
	Granularity hashfinder.Granularity
	Algorithm   string
	Nonce       Nonce
}

// Solution is what the client found for a Challenge.
type Solution struct {
	Origin  string // hex encoded, as sent on the wire
	Trials  uint64
	Elapsed time.Duration
}

// Ticket is handed out for an admitted origin.
type Ticket struct {
	ID       string
	Origin   string
	IssuedAt time.Time
}
