// Package apperr defines the error kinds surfaced by the API and their HTTP mapping.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnsupportedMediaType
	KindPayloadTooLarge
	KindNotFound
	KindAuthorization
	KindUnauthenticated
	KindRemoteService
	KindPersistence
)

var statusByKind = map[Kind]int{
	KindInternal:             http.StatusInternalServerError,
	KindValidation:           http.StatusBadRequest,
	KindUnsupportedMediaType: http.StatusBadRequest,
	KindPayloadTooLarge:      http.StatusRequestEntityTooLarge,
	KindNotFound:             http.StatusNotFound,
	KindAuthorization:        http.StatusForbidden,
	KindUnauthenticated:      http.StatusUnauthorized,
	KindRemoteService:        http.StatusInternalServerError,
	KindPersistence:          http.StatusInternalServerError,
}

// Error carries a kind, the message that is safe to show to a client and the cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Status() int {
	return statusByKind[e.Kind]
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func UnsupportedMediaType(msg string) *Error {
	return &Error{Kind: KindUnsupportedMediaType, Message: msg}
}

func PayloadTooLarge(msg string) *Error {
	return &Error{Kind: KindPayloadTooLarge, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// RemoteService wraps a media-store failure. The client sees the innermost upstream
// message only, so local wrapping with paths and object keys stays in the logs.
func RemoteService(err error) *Error {
	msg := "Remote media service failed"
	if root := rootCause(err); root != nil && root.Error() != "" {
		msg = root.Error()
	}
	return &Error{Kind: KindRemoteService, Message: msg, Err: err}
}

func rootCause(err error) error {
	for err != nil {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return nil
}

// Persistence wraps a database failure behind a generic message.
func Persistence(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status()
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text that goes into the response body. Causes are never
// included.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Internal server error"
}
