// Package hashfinder searches for and verifies origins: byte values whose
// digest starts with a required number of zero hexadecimal characters.
package hashfinder

/*
	Origins and targets:

	An origin is a 32-byte value picked at random by the producer. The verifier
	hashes the submitted origin once (SingleRound) or twice (TwoRound) and the
	resulting target digest must start with Difficulty zero units. The origin
	travels as a hex string; the target is never transmitted.

	pow-account verifiers hash the submitted origin exactly once, so SingleRound
	is the mode that accepts their origins. Their documentation calls the scheme
	two-round because the producer also hashes entropy into the origin; that
	first round happens before submission and the verifier never sees it.

	Cost asymmetry:

	Every hex character of difficulty multiplies the expected search cost by 16
	while verification stays at one or two digest computations. There is no
	shortcut for the producer other than trying more origins.

	Difficulty:

	The default of 5 leading zeros equals 20 zero bits. Nibble granularity is the
	default unit; Bit granularity counts exact leading zero bits for callers that
	need finer steps.
*/

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// checkEvery is how many trials run between context checks unless the hasher
// asks for a shorter interval.
const checkEvery = 1024

// Pacer is implemented by hashers whose single trial is expensive. CheckEvery
// returns how many trials may run between context checks.
type Pacer interface {
	CheckEvery() uint64
}

var errSolved = errors.New("solved")

// HashFinder is immutable after construction and safe for concurrent use.
type HashFinder struct {
	difficulty  uint
	mode        Mode
	granularity Granularity
	hasher      Hasher
	newSampler  SamplerFactory
	strictWidth bool
	checkEvery  uint64
}

// Option customizes a HashFinder built by New.
type Option func(*HashFinder) error

// WithMode sets how many digest rounds separate the origin from the target.
func WithMode(m Mode) Option {
	return func(f *HashFinder) error {
		if !m.valid() {
			return &ConfigError{Field: "mode", Value: uint8(m), Err: ErrUnknownMode}
		}
		f.mode = m
		return nil
	}
}

func WithHasher(h Hasher) Option {
	return func(f *HashFinder) error {
		if h == nil {
			return &ConfigError{Field: "hasher", Value: nil, Err: ErrNilOption}
		}
		f.hasher = h
		return nil
	}
}

func WithGranularity(g Granularity) Option {
	return func(f *HashFinder) error {
		if g != Nibble && g != Bit {
			return &ConfigError{Field: "granularity", Value: uint8(g), Err: ErrUnknownGranularity}
		}
		f.granularity = g
		return nil
	}
}

// WithSampler replaces the crypto/rand sampler. The factory is called once per
// search and once per parallel worker.
func WithSampler(factory SamplerFactory) Option {
	return func(f *HashFinder) error {
		if factory == nil {
			return &ConfigError{Field: "sampler", Value: nil, Err: ErrNilOption}
		}
		f.newSampler = factory
		return nil
	}
}

// WithStrictWidth controls whether Check rejects inputs that do not decode to
// exactly OriginSize bytes. It is on by default.
func WithStrictWidth(strict bool) Option {
	return func(f *HashFinder) error {
		f.strictWidth = strict
		return nil
	}
}

// New validates difficulty against the digest width and applies opts. A
// difficulty that no digest can meet is rejected here so that no search ever
// starts on it.
func New(difficulty uint, opts ...Option) (*HashFinder, error) {
	f := &HashFinder{
		difficulty:  difficulty,
		mode:        SingleRound,
		granularity: Nibble,
		hasher:      Blake2s(),
		newSampler:  NewRandomSampler,
		strictWidth: true,
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	f.checkEvery = checkEvery
	if p, ok := f.hasher.(Pacer); ok && p.CheckEvery() > 0 {
		f.checkEvery = p.CheckEvery()
	}

	if limit := f.granularity.MaxDifficulty(); difficulty > limit {
		return nil, &ConfigError{
			Field: "difficulty",
			Value: difficulty,
			Err:   ErrDifficultyRange,
			Info:  fmt.Sprintf("must be at most %d %ss", limit, f.granularity),
		}
	}

	return f, nil
}

// Default returns a finder with DefaultDifficulty and default options.
func Default() *HashFinder {
	f, err := New(DefaultDifficulty)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *HashFinder) Difficulty() uint { return f.difficulty }

func (f *HashFinder) Mode() Mode { return f.mode }

func (f *HashFinder) Granularity() Granularity { return f.granularity }

func (f *HashFinder) Hasher() Hasher { return f.hasher }

// Result describes a finished search.
type Result struct {
	Origin Origin
	// Target is the digest that met the difficulty.
	Target Digest
	Trials uint64
}

// Find draws origins until one qualifies. It does not return before that;
// use Search or FindContext for a bounded attempt.
func (f *HashFinder) Find() Origin {
	res, _ := f.search(context.Background(), f.newSampler(), 0)
	return res.Origin
}

// FindContext is Find that gives up when ctx is done.
func (f *HashFinder) FindContext(ctx context.Context) (Origin, error) {
	res, err := f.search(ctx, f.newSampler(), 0)
	if err != nil {
		return Origin{}, err
	}
	return res.Origin, nil
}

// Search runs at most maxTrials trials (unlimited when zero). It returns
// ErrBudgetExhausted when the budget runs out and ctx.Err() when ctx ends
// first. Trials is filled in on every outcome.
func (f *HashFinder) Search(ctx context.Context, maxTrials uint64) (Result, error) {
	return f.search(ctx, f.newSampler(), maxTrials)
}

// FindParallel races workers goroutines, each with its own sampler. The first
// qualifying origin wins and the other workers stop. workers <= 0 uses
// GOMAXPROCS.
func (f *HashFinder) FindParallel(ctx context.Context, workers int) (Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, workers)
	found := make([]bool, workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		g.Go(func() error {
			res, err := f.search(gctx, f.newSampler(), 0)
			results[i] = res
			if err != nil {
				return err
			}
			found[i] = true
			return errSolved
		})
	}
	err := g.Wait()

	var total uint64
	for _, r := range results {
		total += r.Trials
	}
	for i, ok := range found {
		if ok {
			win := results[i]
			win.Trials = total
			return win, nil
		}
	}
	return Result{Trials: total}, err
}

func (f *HashFinder) search(ctx context.Context, s Sampler, maxTrials uint64) (Result, error) {
	var trials uint64
	for {
		if maxTrials > 0 && trials >= maxTrials {
			return Result{Trials: trials}, ErrBudgetExhausted
		}
		if trials%f.checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Result{Trials: trials}, err
			}
		}

		origin := s.Next()
		trials++

		target := f.target(origin[:])
		if Satisfies(target, f.difficulty, f.granularity) {
			return Result{Origin: origin, Target: target, Trials: trials}, nil
		}
	}
}

// target applies the mode's digest rounds to an origin.
func (f *HashFinder) target(origin []byte) Digest {
	d := f.hasher.Sum(origin)
	for range f.mode.Rounds() - 1 {
		d = f.hasher.Sum(d[:])
	}
	return d
}

// Check decodes a hex origin, hashes it according to the mode and reports
// whether the target meets the difficulty. A malformed input yields a
// *ParseError; a well formed origin that misses the difficulty yields false
// and a nil error.
func (f *HashFinder) Check(origin string) (bool, error) {
	raw, err := f.decode(origin)
	if err != nil {
		return false, err
	}
	return Satisfies(f.target(raw), f.difficulty, f.granularity), nil
}

func (f *HashFinder) decode(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if !isHexChar(s[i]) {
			return nil, &ParseError{Input: s, Length: len(s), Offset: i, Err: ErrInvalidHex}
		}
	}
	if len(s)%2 != 0 {
		return nil, &ParseError{Input: s, Length: len(s), Offset: -1, Err: ErrOddLength}
	}
	if f.strictWidth && hex.DecodedLen(len(s)) != OriginSize {
		return nil, &ParseError{Input: s, Length: len(s), Offset: -1, Err: ErrOriginWidth}
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, &ParseError{Input: s, Length: len(s), Offset: -1, Err: err}
	}
	return raw, nil
}

func isHexChar(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// Encode is the transport encoding expected by Check.
func Encode(o Origin) string {
	return hex.EncodeToString(o[:])
}
