package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"powaccount/pkg/pow/hashfinder"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFindThenCheck(t *testing.T) {
	out, err := run(t, "find", "-d", "3", "--mode", "two", "--workers", "2")
	require.NoError(t, err)

	var origin string
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, "origin: "); ok {
			origin = v
		}
		if v, ok := strings.CutPrefix(line, "target: "); ok {
			require.True(t, strings.HasPrefix(v, "000"), v)
		}
	}
	require.Len(t, origin, 2*hashfinder.OriginSize)

	out, err = run(t, "check", origin, "-d", "3", "--mode", "two")
	require.NoError(t, err)
	require.Equal(t, "true\n", out)
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", "51ad0600f06b0d57300a37952cea658410488748400628c8a2e7d712892d806e")
	require.NoError(t, err)
	require.Equal(t, "true\n", out)

	out, err = run(t, "check", "-d", "6", "51ad0600f06b0d57300a37952cea658410488748400628c8a2e7d712892d806e")
	require.NoError(t, err)
	require.Equal(t, "false\n", out)

	out, err = run(t, "check", "-d", "0", "--any-width", "ff")
	require.NoError(t, err)
	require.Equal(t, "true\n", out)

	_, err = run(t, "check", "not-hex!!")
	require.ErrorIs(t, err, hashfinder.ErrInvalidHex)

	_, err = run(t, "check", "-d", "65", "00")
	require.ErrorIs(t, err, hashfinder.ErrDifficultyRange)
}

func TestFind_budget(t *testing.T) {
	_, err := run(t, "find", "-d", "64", "--max-trials", "10")
	require.ErrorIs(t, err, hashfinder.ErrBudgetExhausted)
}

func TestBench(t *testing.T) {
	out, err := run(t, "bench", "-d", "1", "-n", "20", "--algo", "sha256")
	require.NoError(t, err)
	require.Contains(t, out, "runs: 20")
	require.Contains(t, out, "expected: 16.0")
}
