package hashfinder

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSatisfies_matchesHexPrefix(t *testing.T) {
	t.Parallel()

	s := NewSeededSampler(seedForTest(t))
	digests := []Digest{{}, {0x0f}, {0x00, 0x01}}
	for range 200 {
		o := s.Next()
		// Zero a random-ish prefix so long runs of zeros are covered too.
		d := Digest(o)
		for i := range int(o[0] % 6) {
			d[i] = 0
		}
		digests = append(digests, d)
	}

	for _, d := range digests {
		encoded := hex.EncodeToString(d[:])
		for n := uint(0); n <= 2*DigestSize; n++ {
			want := strings.HasPrefix(encoded, strings.Repeat("0", int(n)))
			require.Equal(t, want, Satisfies(d, n, Nibble), "digest %s n=%d", encoded, n)
		}
	}
}

func TestSatisfies_edges(t *testing.T) {
	t.Parallel()

	var zero Digest
	require.True(t, Satisfies(zero, 64, Nibble))
	require.False(t, Satisfies(zero, 65, Nibble))
	require.True(t, Satisfies(zero, 256, Bit))
	require.False(t, Satisfies(zero, 257, Bit))

	full := Digest{}
	for i := range full {
		full[i] = 0xff
	}
	require.True(t, Satisfies(full, 0, Nibble))
	require.True(t, Satisfies(full, 0, Bit))
	require.False(t, Satisfies(full, 1, Nibble))
	require.False(t, Satisfies(full, 1, Bit))

	// 0x0f: four zero bits, one zero nibble.
	d := Digest{0x0f}
	require.True(t, Satisfies(d, 1, Nibble))
	require.False(t, Satisfies(d, 2, Nibble))
	require.True(t, Satisfies(d, 4, Bit))
	require.False(t, Satisfies(d, 5, Bit))
}

func TestParseGranularity(t *testing.T) {
	t.Parallel()

	g, err := ParseGranularity("")
	require.NoError(t, err)
	require.Equal(t, Nibble, g)

	g, err = ParseGranularity("bits")
	require.NoError(t, err)
	require.Equal(t, Bit, g)

	_, err = ParseGranularity("bytes")
	require.ErrorIs(t, err, ErrUnknownGranularity)

	require.Equal(t, uint(64), Nibble.MaxDifficulty())
	require.Equal(t, uint(256), Bit.MaxDifficulty())
}

func TestSamplers(t *testing.T) {
	t.Parallel()

	seed := seedForTest(t)
	a, b := NewSeededSampler(seed), NewSeededSampler(seed)
	for range 10 {
		require.Equal(t, a.Next(), b.Next())
	}

	c := NewCounterSampler([24]byte{1, 2, 3})
	first, second := c.Next(), c.Next()
	require.Equal(t, first[:24], second[:24])
	require.Equal(t, byte(0), first[31])
	require.Equal(t, byte(1), second[31])
	require.Equal(t, byte(1), first[0])

	r := NewRandomSampler()
	require.NotEqual(t, r.Next(), r.Next())
	require.NotEqual(t, NewRandomCounterSampler().Next(), NewRandomCounterSampler().Next())
}
