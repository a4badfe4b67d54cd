package bridge

import (
	"errors"
	"net/http"
)

// Sentinel error kinds. Every failure path in the bridge resolves to
// exactly one of these; Error.Unwrap exposes the kind to errors.Is.
var (
	ErrPeerAbsent = errors.New("bridge: no peer connection")
	ErrTimeout    = errors.New("bridge: deadline exceeded waiting on peer")
	ErrCancelled  = errors.New("bridge: request cancelled")
	ErrPeerError  = errors.New("bridge: peer reported an error")
	ErrMalformed  = errors.New("bridge: malformed frame")
	ErrInternal   = errors.New("bridge: internal error")
)

// Error wraps one of the sentinel kinds with request-specific context and
// implements the statusCode contract core/response's error handlers look
// for. Those handlers only honor statuses that have a predefined HTTPError
// and render anything else (200, 499) as 500, so the HTTP surface converts
// an Error into a response.HTTPError itself before returning it.
type Error struct {
	Kind    error
	Message string
	Peer    *ErrorDetail // set only for ErrPeerError
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

// StatusCode maps the error kind to the HTTP status the daemon reports it
// under. ErrPeerError is 200: the RPC reached the editor and came back with
// a structured failure, which is a successful round trip as far as the HTTP
// layer is concerned.
func (e *Error) StatusCode() int {
	switch {
	case errors.Is(e.Kind, ErrPeerAbsent):
		return http.StatusServiceUnavailable
	case errors.Is(e.Kind, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(e.Kind, ErrCancelled):
		return 499
	case errors.Is(e.Kind, ErrPeerError):
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}
