package tcp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"powaccount/internal/domain"
	"powaccount/internal/usecases"
)

type Client struct {
	cfg    *Config
	solver usecases.SolverUsecase
	logger Logger
}

type Config struct {
	ServerAddr     string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	// Sessions is how many tickets Start collects.
	Sessions int
}

type Logger interface {
	Error(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

func NewClient(cfg *Config, solver usecases.SolverUsecase, logger Logger) *Client {
	return &Client{
		cfg:    cfg,
		solver: solver,
		logger: logger,
	}
}

// Start runs cfg.Sessions admissions one after another and returns the first
// error that survived its retries.
func (c *Client) Start(ctx context.Context) error {
	sessions := c.cfg.Sessions
	if sessions <= 0 {
		sessions = 1
	}

	for i := 0; i < sessions; i++ {
		ticket, err := c.admitWithRetry(ctx)
		if err != nil {
			return err
		}
		c.logger.Info("admitted", "session", i+1, "ticket", ticket.ID)
	}
	return nil
}

func (c *Client) admitWithRetry(ctx context.Context) (*domain.Ticket, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			c.logger.Info("retrying connection",
				"attempt", attempt+1,
				"max_attempts", c.cfg.RetryAttempts+1)
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		ticket, err := c.Admit(ctx)
		if err == nil {
			return ticket, nil
		}
		lastErr = err
		c.logger.Error("session error", "attempt", attempt+1, "error", err)
		if !IsRetryableError(err) {
			return nil, err
		}
	}
	return nil, NewClientError("Start", ErrMaxRetriesExceeded, lastErr.Error())
}

// Admit performs one session: read parameters, search, submit, read verdict.
func (c *Client) Admit(ctx context.Context) (*domain.Ticket, error) {
	connectCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	conn, err := c.connect(connectCtx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	reqCtx, reqCancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer reqCancel()

	session := &ClientSession{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		writer:  bufio.NewWriter(conn),
		client:  c,
		context: reqCtx,
	}

	return session.Execute()
}

func (c *Client) connect(ctx context.Context) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.cfg.ServerAddr)
	if err != nil {
		return nil, NewClientError("connect", err, "connection failed")
	}

	if err := conn.SetDeadline(time.Now().Add(c.cfg.RequestTimeout)); err != nil {
		conn.Close()
		return nil, NewClientError("connect", err, "setting timeout failed")
	}

	return conn, nil
}

type ClientSession struct {
	conn    net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	client  *Client
	context context.Context
}

func (s *ClientSession) Execute() (*domain.Ticket, error) {
	challenge, err := s.receiveChallenge()
	if err != nil {
		return nil, err
	}

	solution, err := s.solveChallenge(challenge)
	if err != nil {
		return nil, err
	}

	return s.sendSolutionAndGetResponse(solution)
}

func (s *ClientSession) receiveChallenge() (domain.Challenge, error) {
	ch, err := domain.ReadChallenge(s.reader)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ch, NewClientError("receiveChallenge", ErrConnectionClosed, "unexpected EOF")
		}
		if errors.Is(err, domain.ErrInvalidHeader) {
			return ch, NewClientError("receiveChallenge", ErrInvalidChallenge, err.Error())
		}
		return ch, NewClientError("receiveChallenge", err, "reading challenge failed")
	}

	s.client.logger.Debug("challenge received",
		"difficulty", ch.Difficulty,
		"mode", ch.Mode.String(),
		"algorithm", ch.Algorithm)
	return ch, nil
}

func (s *ClientSession) solveChallenge(ch domain.Challenge) (*domain.Solution, error) {
	solution, err := s.client.solver.Solve(s.context, ch)
	if err != nil {
		return nil, NewClientError("solveChallenge", ErrSolutionNotFound, err.Error())
	}

	s.client.logger.Info("origin found",
		"trials", solution.Trials,
		"elapsed", solution.Elapsed.String())
	return solution, nil
}

func (s *ClientSession) sendSolutionAndGetResponse(solution *domain.Solution) (*domain.Ticket, error) {
	errCh := make(chan error, 1)

	go func() {
		if _, err := s.writer.WriteString(solution.Origin + "\n"); err != nil {
			errCh <- NewClientError("sendSolution", err, "sending solution failed")
			return
		}
		if err := s.writer.Flush(); err != nil {
			errCh <- NewClientError("sendSolution", err, "flush failed")
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
	case <-s.context.Done():
		return nil, NewClientError("sendSolution", ErrWriteTimeout, "write timeout")
	}

	type result struct {
		response string
		err      error
	}
	responseCh := make(chan result, 1)

	go func() {
		response, err := s.reader.ReadString('\n')
		responseCh <- result{response, err}
	}()

	select {
	case r := <-responseCh:
		if r.err != nil {
			return nil, NewClientError("readResponse", r.err, "reading response failed")
		}
		return s.handleResponse(strings.TrimSpace(r.response), solution.Origin)
	case <-s.context.Done():
		return nil, NewClientError("readResponse", ErrReadTimeout, "read timeout")
	}
}

func (s *ClientSession) handleResponse(response, origin string) (*domain.Ticket, error) {
	if id, ok := strings.CutPrefix(response, "ADMITTED:"); ok {
		if id == "" {
			return nil, NewClientError("handleResponse", ErrInvalidProtocol, "empty ticket")
		}
		return &domain.Ticket{ID: id, Origin: origin, IssuedAt: time.Now()}, nil
	}

	if rest, ok := strings.CutPrefix(response, "ERROR:"); ok {
		parts := strings.SplitN(rest, ":", 2)
		if len(parts) != 2 {
			return nil, NewClientError("handleResponse", ErrInvalidProtocol, "invalid error format")
		}
		return nil, NewClientError("handleResponse", &RejectionError{Code: parts[0], Message: parts[1]}, "")
	}

	return nil, NewClientError("handleResponse", ErrInvalidProtocol, "invalid response format")
}
