// Package apperr defines the error taxonomy shared by every service in the
// backend. Handlers map the kind of a failure to an HTTP status and a
// caller-safe message; storage failures keep their cause for logging but
// never expose it to the client.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindInvalidState
	KindStorage
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(entity string) error {
	return &Error{Kind: KindNotFound, Msg: entity + " not found"}
}

func InvalidState(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidState, Msg: fmt.Sprintf(format, args...)}
}

func Storage(op string, err error) error {
	return &Error{Kind: KindStorage, Msg: op + " failed", Err: err}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// SafeMessage is the message handlers may return to the caller. Storage and
// unknown failures collapse to a generic message so internals never leak.
func SafeMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindStorage {
		return e.Msg
	}
	return "internal server error"
}
