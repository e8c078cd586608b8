package tcp

import (
	"bufio"
	"context"
	"encoding/hex"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"

	"powaccount/internal/domain"
	"powaccount/internal/usecases"
	"powaccount/pkg/pow/argon2"
	"powaccount/pkg/pow/hashfinder"
)

func startServer(t *testing.T, ch domain.Challenge, ttl time.Duration) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	admission, err := usecases.NewAdmissionUsecase(ch, argon2.DefaultParams())
	require.NoError(t, err)

	nonces, err := NewNonceStore(ctx, ttl)
	require.NoError(t, err)
	t.Cleanup(func() { nonces.Close() })

	srv := NewServer(&Config{Deadline: 5 * time.Second, MaxLineSize: 256},
		admission, usecases.NewTicketUsecase(), nonces, slogt.New(t))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return ln.Addr().String()
}

// exchange reads the header, sends the line built by solve and returns the
// server's answer.
func exchange(t *testing.T, addr string, solve func(domain.Challenge) string) string {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(10*time.Second)))

	r := bufio.NewReader(conn)
	ch, err := domain.ReadChallenge(r)
	require.NoError(t, err)

	_, err = conn.Write([]byte(solve(ch) + "\n"))
	require.NoError(t, err)

	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSpace(line)
}

func solveFor(t *testing.T) func(domain.Challenge) string {
	return func(ch domain.Challenge) string {
		solver := usecases.NewSolverUsecase(usecases.SolverConfig{Workers: 1})
		sol, err := solver.Solve(context.Background(), ch)
		require.NoError(t, err)
		return sol.Origin
	}
}

func TestServer_admitsValidOrigin(t *testing.T) {
	want := domain.Challenge{Difficulty: 2, Mode: hashfinder.TwoRound, Algorithm: "blake2s"}
	addr := startServer(t, want, time.Minute)

	var announced []domain.Challenge
	for range 2 {
		resp := exchange(t, addr, func(ch domain.Challenge) string {
			announced = append(announced, ch)
			return solveFor(t)(ch)
		})
		require.True(t, strings.HasPrefix(resp, "ADMITTED:"), resp)
	}

	require.NotEqual(t, announced[0].Nonce, announced[1].Nonce)
	for _, ch := range announced {
		require.NotZero(t, ch.Nonce)
		ch.Nonce = domain.Nonce{}
		require.Equal(t, want, ch)
	}
}

func TestServer_rejectsResubmittedOrigin(t *testing.T) {
	ttl := 200 * time.Millisecond
	addr := startServer(t, domain.Challenge{Difficulty: 1, Mode: hashfinder.SingleRound, Algorithm: "sha256"}, ttl)

	var origin string
	resp := exchange(t, addr, func(ch domain.Challenge) string {
		origin = solveFor(t)(ch)
		return origin
	})
	require.True(t, strings.HasPrefix(resp, "ADMITTED:"), resp)

	// Case does not make it a different origin.
	resp = exchange(t, addr, func(domain.Challenge) string { return strings.ToUpper(origin) })
	require.Equal(t, "ERROR:REPLAYED:Origin does not answer an open challenge", resp)

	// Nor does waiting out the ttl.
	time.Sleep(3 * ttl)
	resp = exchange(t, addr, func(domain.Challenge) string { return origin })
	require.Equal(t, "ERROR:REPLAYED:Origin does not answer an open challenge", resp)
}

func TestServer_rejectsExpiredNonce(t *testing.T) {
	ttl := 200 * time.Millisecond
	addr := startServer(t, domain.Challenge{Difficulty: 1, Mode: hashfinder.SingleRound, Algorithm: "blake2s"}, ttl)

	resp := exchange(t, addr, func(ch domain.Challenge) string {
		origin := solveFor(t)(ch)
		time.Sleep(3 * ttl)
		return origin
	})
	require.Equal(t, "ERROR:REPLAYED:Origin does not answer an open challenge", resp)
}

func TestServer_rejectsMalformedAndWrongOrigins(t *testing.T) {
	ch := domain.Challenge{Difficulty: 3, Mode: hashfinder.SingleRound, Algorithm: "blake2s"}
	addr := startServer(t, ch, time.Minute)

	resp := exchange(t, addr, func(domain.Challenge) string { return "not-hex!!" })
	require.Equal(t, "ERROR:INVALID_FORMAT:Origin must be 64 hex characters on one line", resp)

	resp = exchange(t, addr, func(domain.Challenge) string { return "abcd" })
	require.Equal(t, "ERROR:INVALID_FORMAT:Origin must be 64 hex characters on one line", resp)

	// Right nonce, but the digest misses the difficulty.
	resp = exchange(t, addr, func(announced domain.Challenge) string {
		f, err := usecases.NewFinder(announced, argon2.DefaultParams())
		require.NoError(t, err)

		origin := announced.Nonce[:]
		for i := 0; ; i++ {
			candidate := hex.EncodeToString(append(origin, make([]byte, hashfinder.OriginSize-domain.NonceSize-1)...)) +
				hex.EncodeToString([]byte{byte(i)})
			ok, err := f.Check(candidate)
			require.NoError(t, err)
			if !ok {
				return candidate
			}
		}
	})
	require.Equal(t, "ERROR:INVALID_SOLUTION:Origin does not meet the difficulty", resp)
}

func TestServer_rejectsOverlongLine(t *testing.T) {
	addr := startServer(t, domain.Challenge{Difficulty: 1, Mode: hashfinder.SingleRound, Algorithm: "blake2s"}, time.Minute)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(10*time.Second)))

	r := bufio.NewReader(conn)
	_, err = domain.ReadChallenge(r)
	require.NoError(t, err)

	// Exactly MaxLineSize bytes and no newline.
	_, err = conn.Write([]byte(strings.Repeat("a", 256)))
	require.NoError(t, err)

	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "ERROR:INVALID_FORMAT:Origin must be 64 hex characters on one line", strings.TrimSpace(line))
}

func TestServer_stopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	admission, err := usecases.NewAdmissionUsecase(domain.Challenge{Difficulty: 1, Mode: hashfinder.SingleRound, Algorithm: "blake2s"}, argon2.DefaultParams())
	require.NoError(t, err)
	nonces, err := NewNonceStore(context.Background(), time.Minute)
	require.NoError(t, err)
	defer nonces.Close()

	srv := NewServer(&Config{Deadline: time.Second}, admission, usecases.NewTicketUsecase(), nonces, slogt.New(t))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrServerShutdown)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestToErrorResponse(t *testing.T) {
	require.Equal(t, ErrRespTimeout, ToErrorResponse(opError("op", ErrReadTimeout, "")))
	require.Equal(t, ErrRespTimeout, ToErrorResponse(opError("op", ErrWriteTimeout, "")))
	require.Equal(t, ErrRespReplayed, ToErrorResponse(opError("op", ErrReplayed, "")))
	require.Equal(t, ErrRespInvalidFormat, ToErrorResponse(opError("op", ErrInvalidProtocol, "x")))
	require.Equal(t, ErrRespInvalidSolution, ToErrorResponse(opError("op", ErrInvalidSolution, "")))
	require.Equal(t, ErrRespInternal, ToErrorResponse(ErrConnectionClosed))
	require.Equal(t, "ERROR:TIMEOUT:Session deadline exceeded\n", ErrRespTimeout.Line())
}

func TestNonceStore(t *testing.T) {
	s, err := NewNonceStore(context.Background(), time.Minute)
	require.NoError(t, err)
	defer s.Close()

	a, err := s.Issue()
	require.NoError(t, err)
	b, err := s.Issue()
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	open, err := s.Redeem(a)
	require.NoError(t, err)
	require.True(t, open)

	open, err = s.Redeem(a)
	require.NoError(t, err)
	require.False(t, open)

	open, err = s.Redeem(domain.Nonce{1, 2, 3})
	require.NoError(t, err)
	require.False(t, open)

	// b expires even if the cache still holds it.
	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	open, err = s.Redeem(b)
	require.NoError(t, err)
	require.False(t, open)

	_, err = NewNonceStore(context.Background(), 0)
	require.Error(t, err)
}
