package domain

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"powaccount/pkg/pow/hashfinder"
)

func testNonce() Nonce {
	var n Nonce
	for i := range n {
		n[i] = byte(0xa0 + i)
	}
	return n
}

// header builds a raw header with the test nonce.
func header(mode, granularity byte, difficulty byte, name ...byte) []byte {
	nonce := testNonce()
	raw := []byte{mode, granularity, 0, 0, 0, difficulty}
	raw = append(raw, nonce[:]...)
	return append(raw, name...)
}

func TestChallengeHeader(t *testing.T) {
	in := Challenge{
		Difficulty:  5,
		Mode:        hashfinder.TwoRound,
		Granularity: hashfinder.Bit,
		Algorithm:   "blake2s",
		Nonce:       testNonce(),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteChallenge(&buf, in))
	require.Equal(t, header(0x02, 0x01, 5, 7, 'b', 'l', 'a', 'k', 'e', '2', 's'), buf.Bytes())

	out, err := ReadChallenge(&buf)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestChallengeHeader_rejects(t *testing.T) {
	require.ErrorIs(t, WriteChallenge(io.Discard, Challenge{Mode: hashfinder.SingleRound}), ErrInvalidHeader)

	for _, raw := range [][]byte{
		header(0x03, 0x00, 1, 1, 'x'),
		header(0x01, 0x07, 1, 1, 'x'),
		header(0x01, 0x00, 1, 0),
		header(0x01, 0x00, 1, 200),
	} {
		_, err := ReadChallenge(bytes.NewReader(raw))
		require.ErrorIs(t, err, ErrInvalidHeader, "header % x", raw)
	}

	// Cut inside the nonce.
	_, err := ReadChallenge(bytes.NewReader(header(0x01, 0x00, 1)[:10]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
