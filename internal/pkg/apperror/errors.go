// Package apperror defines the closed set of failures the API can report.
//
// Services return *Error values built with the constructors below; the HTTP
// boundary (serverutils.ErrorHandlerMiddleware) converts any error into a
// status code and JSON body through From.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Kind discriminates the error variants. The zero value is KindInternal.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindTooManyRequests
)

// StatusCode returns the HTTP status for the kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine readable code sent to clients.
func (k Kind) Code() string {
	switch k {
	case KindBadRequest:
		return "BAD_REQUEST_ERROR"
	case KindUnauthorized:
		return "UNAUTHORIZED_ERROR"
	case KindNotFound:
		return "NOT_FOUND_ERROR"
	case KindTooManyRequests:
		return "TOO_MANY_REQUESTS_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

func (k Kind) String() string {
	return k.Code()
}

// InternalMessage is the only message clients see for unclassified failures.
const InternalMessage = "Something went wrong"

// Error is the single error type used across services.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// StatusCode is shorthand for e.Kind.StatusCode().
func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, cause: err}
}

var (
	ErrBadRequest      = &Error{Kind: KindBadRequest, Message: "bad request"}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrTooManyRequests = &Error{Kind: KindTooManyRequests, Message: "too many requests"}
	ErrInternal        = &Error{Kind: KindInternal, Message: InternalMessage}
)

func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func TooManyRequests(msg string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: msg}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: InternalMessage, cause: cause}
}

// From classifies any error into an *Error. Fiber's own errors (unknown
// route, malformed body) are mapped by status; everything else becomes
// Internal with the cause attached.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
			return &Error{Kind: KindBadRequest, Message: fiberErr.Message, cause: err}
		case fiber.StatusUnauthorized:
			return &Error{Kind: KindUnauthorized, Message: fiberErr.Message, cause: err}
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			return &Error{Kind: KindNotFound, Message: fiberErr.Message, cause: err}
		case fiber.StatusTooManyRequests:
			return &Error{Kind: KindTooManyRequests, Message: fiberErr.Message, cause: err}
		}
	}

	return Internal(err)
}
