package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"powaccount/internal/domain"
	"powaccount/internal/usecases"
	"powaccount/pkg/pow/hashfinder"
)

type Server struct {
	cfg       *Config
	admission usecases.AdmissionUsecase
	tickets   usecases.TicketUsecase
	nonces    *NonceStore
	logger    Logger
}

type Config struct {
	Address   string
	KeepAlive time.Duration
	Deadline  time.Duration
	// MaxLineSize bounds the solution line a client may send, newline
	// included.
	MaxLineSize int64
}

const defaultMaxLineSize = 1024

type Logger interface {
	Error(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

func NewServer(cfg *Config, admission usecases.AdmissionUsecase, tickets usecases.TicketUsecase, nonces *NonceStore, logger Logger) *Server {
	return &Server{
		cfg:       cfg,
		admission: admission,
		tickets:   tickets,
		nonces:    nonces,
		logger:    logger,
	}
}

func (s *Server) Run(ctx context.Context) error {
	lc := net.ListenConfig{
		KeepAlive: s.cfg.KeepAlive,
	}

	listener, err := lc.Listen(ctx, "tcp", s.cfg.Address)
	if err != nil {
		return opError("Run", err, "failed to start listener")
	}

	s.logger.Info("server started", "address", listener.Addr().String())

	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is done. It closes listener
// before returning.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Debug("listener closed")
				return opError("Serve", ErrServerShutdown, "context cancelled")
			}
			if errors.Is(err, net.ErrClosed) {
				s.logger.Debug("listener closed")
				return nil
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}
		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(parent context.Context, conn net.Conn) {
	id := uuid.NewString()
	defer func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("connection close failed",
				"session", id,
				"error", opError("handleConnection", err, "cleanup failed"))
		}
	}()

	ctx, cancel := context.WithTimeout(parent, s.cfg.Deadline)
	defer cancel()

	if err := conn.SetDeadline(time.Now().Add(s.cfg.Deadline)); err != nil {
		s.logger.Error("set deadline failed",
			"session", id,
			"error", opError("handleConnection", err, "setting timeout failed"))
		return
	}

	maxLine := s.cfg.MaxLineSize
	if maxLine <= 0 {
		maxLine = defaultMaxLineSize
	}

	session := &Session{
		id:      id,
		conn:    conn,
		reader:  bufio.NewReader(io.LimitReader(conn, maxLine)),
		writer:  bufio.NewWriter(conn),
		server:  s,
		context: ctx,
		maxLine: maxLine,
	}

	if err := session.Handle(); err != nil {
		s.handleError(id, session.writer, err)
	}
}

type Session struct {
	id      string
	conn    net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	server  *Server
	context context.Context
	maxLine int64
	nonce   domain.Nonce
}

// Handle announces the parameters with a fresh nonce, reads one origin and
// answers with a ticket or an error line.
func (s *Session) Handle() error {
	if err := s.sendChallenge(); err != nil {
		return fmt.Errorf("failed to send challenge: %w", err)
	}

	origin, err := s.readSolution()
	if err != nil {
		return fmt.Errorf("failed to read solution: %w", err)
	}

	if err := s.validateAndRespond(origin); err != nil {
		return fmt.Errorf("failed to validate and respond: %w", err)
	}

	return nil
}

func (s *Session) sendChallenge() error {
	nonce, err := s.server.nonces.Issue()
	if err != nil {
		return opError("sendChallenge", ErrInternal, err.Error())
	}
	s.nonce = nonce
	ch := s.server.admission.Challenge(nonce)

	if err := domain.WriteChallenge(s.writer, ch); err != nil {
		return opError("sendChallenge", ErrChallengeDelivery, err.Error())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.writer.Flush()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return opError("sendChallenge", ErrChallengeDelivery, "write challenge failed")
		}
	case <-s.context.Done():
		return opError("sendChallenge", ErrWriteTimeout, "context deadline exceeded")
	}

	s.server.logger.Info("challenge sent",
		"session", s.id,
		"difficulty", ch.Difficulty,
		"mode", ch.Mode.String(),
		"algorithm", ch.Algorithm)

	return nil
}

func (s *Session) readSolution() (string, error) {
	type result struct {
		origin string
		err    error
	}
	resultCh := make(chan result, 1)

	go func() {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			switch {
			case errors.Is(err, io.EOF) && int64(len(line)) >= s.maxLine:
				err = opError("readSolution", ErrInvalidProtocol, fmt.Sprintf("line exceeds %d bytes", s.maxLine))
			case errors.Is(err, io.EOF):
				err = opError("readSolution", ErrConnectionClosed, "reading solution failed")
			default:
				err = opError("readSolution", err, "reading solution failed")
			}
			resultCh <- result{"", err}
			return
		}
		resultCh <- result{strings.TrimSpace(line), nil}
	}()

	select {
	case r := <-resultCh:
		return r.origin, r.err
	case <-s.context.Done():
		return "", opError("readSolution", ErrReadTimeout, "context deadline exceeded")
	}
}

func (s *Session) validateAndRespond(origin string) error {
	// Redeemed before any digest is computed, so an expired nonce costs
	// nothing to reject.
	open, err := s.server.nonces.Redeem(s.nonce)
	if err != nil {
		return opError("validateAndRespond", ErrInternal, err.Error())
	}
	if !open {
		return opError("validateAndRespond", ErrReplayed, "nonce expired")
	}

	ok, err := s.server.admission.Admit(s.nonce, origin)
	switch {
	case errors.Is(err, usecases.ErrNonceMismatch):
		return opError("validateAndRespond", ErrReplayed, err.Error())
	case hashfinder.IsParseError(err):
		return opError("validateAndRespond", ErrInvalidProtocol, err.Error())
	case err != nil:
		return opError("validateAndRespond", ErrInternal, err.Error())
	case !ok:
		return opError("validateAndRespond", ErrInvalidSolution, "")
	}

	ticket := s.server.tickets.Issue(origin)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.writer.WriteString(formatSuccessResponse(ticket))
		if err == nil {
			err = s.writer.Flush()
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return opError("validateAndRespond", err, "write response failed")
		}
	case <-s.context.Done():
		return opError("validateAndRespond", ErrWriteTimeout, "context deadline exceeded")
	}

	s.server.logger.Info("origin admitted", "session", s.id, "ticket", ticket.ID)
	return nil
}

func (s *Server) handleError(id string, writer *bufio.Writer, err error) {
	response := ToErrorResponse(err)
	s.logger.Error("client error",
		"session", id,
		"code", response.Code,
		"message", response.Message,
		"error", err)

	if err := sendErrorResponse(writer, response); err != nil {
		s.logger.Error("failed to send error response", "session", id, "error", err)
	}
}

func formatSuccessResponse(ticket domain.Ticket) string {
	return fmt.Sprintf("ADMITTED:%s\n", ticket.ID)
}

func sendErrorResponse(writer *bufio.Writer, response ErrorResponse) error {
	if _, err := writer.WriteString(response.Line()); err != nil {
		return err
	}
	return writer.Flush()
}
