package tcp

import (
	"errors"
	"fmt"
)

var (
	// Answered to the client
	ErrInvalidProtocol = errors.New("invalid protocol format")
	ErrInvalidSolution = errors.New("difficulty not met")
	ErrReplayed        = errors.New("origin does not answer an open challenge")
	ErrReadTimeout     = errors.New("read operation timeout")
	ErrWriteTimeout    = errors.New("write operation timeout")

	// Connection and lifecycle
	ErrConnectionClosed  = errors.New("connection closed")
	ErrChallengeDelivery = errors.New("failed to deliver challenge")
	ErrServerShutdown    = errors.New("server is shutting down")
	ErrInternal          = errors.New("internal server error")
)

// ServerError records which step of a session failed.
type ServerError struct {
	Op   string
	Err  error
	Info string
}

func (e *ServerError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Err)
	if e.Info != "" {
		msg += " (" + e.Info + ")"
	}
	return msg
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

func opError(op string, err error, info string) error {
	return &ServerError{Op: op, Err: err, Info: info}
}

// ErrorResponse is sent as ERROR:<Code>:<Message>.
type ErrorResponse struct {
	Code    string
	Message string
}

func (r ErrorResponse) Line() string {
	return fmt.Sprintf("ERROR:%s:%s\n", r.Code, r.Message)
}

var (
	ErrRespInvalidFormat   = ErrorResponse{Code: "INVALID_FORMAT", Message: "Origin must be 64 hex characters on one line"}
	ErrRespInvalidSolution = ErrorResponse{Code: "INVALID_SOLUTION", Message: "Origin does not meet the difficulty"}
	ErrRespReplayed        = ErrorResponse{Code: "REPLAYED", Message: "Origin does not answer an open challenge"}
	ErrRespTimeout         = ErrorResponse{Code: "TIMEOUT", Message: "Session deadline exceeded"}
	ErrRespInternal        = ErrorResponse{Code: "INTERNAL_ERROR", Message: "An internal error occurred"}
)

// responses is matched in order; anything else is an internal error.
var responses = []struct {
	err  error
	resp ErrorResponse
}{
	{ErrInvalidProtocol, ErrRespInvalidFormat},
	{ErrInvalidSolution, ErrRespInvalidSolution},
	{ErrReplayed, ErrRespReplayed},
	{ErrReadTimeout, ErrRespTimeout},
	{ErrWriteTimeout, ErrRespTimeout},
}

func ToErrorResponse(err error) ErrorResponse {
	for _, r := range responses {
		if errors.Is(err, r.err) {
			return r.resp
		}
	}
	return ErrRespInternal
}
