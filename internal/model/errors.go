package model

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure returned by a gateway or store.
type Kind int

const (
	KindServer Kind = iota
	KindAuth
	KindValidation
	KindNotFound
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	default:
		return "server"
	}
}

// HTTPStatus maps the kind to the status code used on the wire.
// Network failures never reach the wire; they map to 502 for completeness.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindAuth:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is the single error type crossing the gateway boundary.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = defaultMessage(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches kind sentinels, so errors.Is(err, ErrNotFound) holds for any
// not-found error regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" && t.Err == nil {
		return t.Kind == e.Kind
	}
	return t == e
}

// Kind sentinels for errors.Is.
var (
	ErrAuth       = &Error{Kind: KindAuth}
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrServer     = &Error{Kind: KindServer}
	ErrNetwork    = &Error{Kind: KindNetwork}
)

const UnauthorizedMessage = "Unauthorized"

func defaultMessage(k Kind) string {
	switch k {
	case KindAuth:
		return UnauthorizedMessage
	case KindValidation:
		return "Invalid request"
	case KindNotFound:
		return "Not found"
	case KindNetwork:
		return "Network error"
	default:
		return "Internal server error"
	}
}

// NewAuthError returns the error for a missing or rejected session.
func NewAuthError() *Error {
	return &Error{Kind: KindAuth, Message: UnauthorizedMessage}
}

// NewValidationError returns an error whose message is shown verbatim.
func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError reports a missing entity of the given kind ("Bookmark", "Tag", ...).
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewServerError wraps an unexpected backend failure.
func NewServerError(err error) *Error {
	return &Error{Kind: KindServer, Message: defaultMessage(KindServer), Err: err}
}

// NewNetworkError wraps a transport failure that happened before any response.
func NewNetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: defaultMessage(KindNetwork), Err: err}
}

// KindOf reports the kind of err. Errors outside the taxonomy are server errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return defaultMessage(e.Kind)
	}
	return defaultMessage(KindServer)
}
