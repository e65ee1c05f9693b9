// Package apperr holds the error taxonomy shared by the services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error. The HTTP layer maps each kind to a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindUnauthorized
	KindUpstreamParse
	KindUpstream
	KindInvalidInput
)

// Error is an application error carrying a client-facing detail message.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so errors.Is(err, ErrNotFound)
// matches any not-found error regardless of its detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrNotFound      = &Error{Kind: KindNotFound, Detail: "not found"}
	ErrConflict      = &Error{Kind: KindConflict, Detail: "conflict"}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized, Detail: "unauthorized"}
	ErrUpstreamParse = &Error{Kind: KindUpstreamParse, Detail: "error parsing response"}
	ErrUpstream      = &Error{Kind: KindUpstream, Detail: "upstream failure"}
	ErrInvalidInput  = &Error{Kind: KindInvalidInput, Detail: "invalid input"}
)

func NotFound(detail string) error {
	return &Error{Kind: KindNotFound, Detail: detail}
}

func Conflict(detail string) error {
	return &Error{Kind: KindConflict, Detail: detail}
}

func Unauthorized(detail string) error {
	return &Error{Kind: KindUnauthorized, Detail: detail}
}

// UpstreamParse wraps the cause of a failed suggestion extraction. The detail embeds the
// cause because callers of the suggestion endpoint only ever see the detail string.
func UpstreamParse(cause error) error {
	return &Error{Kind: KindUpstreamParse, Detail: fmt.Sprintf("Error parsing response: %v", cause), Err: cause}
}

// Upstream wraps a failure to reach the generative-text service.
func Upstream(cause error) error {
	return &Error{Kind: KindUpstream, Detail: fmt.Sprintf("Error generating suggestion: %v", cause), Err: cause}
}

func InvalidInput(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Detail: fmt.Sprintf(format, args...)}
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUpstream:
		return http.StatusBadGateway
	case KindInvalidInput:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Detail returns the message that is safe to show to the client.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return "Internal server error"
}
