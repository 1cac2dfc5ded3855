// Package apperr defines the error kinds the dashboard surfaces to the user.
//
// Every failure that leaves a component is one of these kinds, so callers can
// branch with errors.Is(err, apperr.ErrServerRejected) without knowing about
// transports.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidationFailed means a required input was missing; no network call was made.
	KindValidationFailed
	// KindFetchFailed means the credential list could not be fetched.
	KindFetchFailed
	// KindServerError means a transport failure or a non-2xx response without a readable error.
	KindServerError
	// KindServerRejected means the service answered with an error field.
	KindServerRejected
	// KindAlreadyPending means a reveal is already in flight.
	KindAlreadyPending
	// KindNothingToCopy means the operation needs material that is not in memory.
	KindNothingToCopy
	// KindClipboardUnavailable means the platform clipboard could not be used.
	KindClipboardUnavailable
)

var kindNames = map[Kind]string{
	KindUnknown:              "unknown",
	KindValidationFailed:     "validation failed",
	KindFetchFailed:          "fetch failed",
	KindServerError:          "server error",
	KindServerRejected:       "server rejected",
	KindAlreadyPending:       "already pending",
	KindNothingToCopy:        "nothing to copy",
	KindClipboardUnavailable: "clipboard unavailable",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for errors.Is.
var (
	ErrValidationFailed     = &Error{Kind: KindValidationFailed}
	ErrFetchFailed          = &Error{Kind: KindFetchFailed}
	ErrServerError          = &Error{Kind: KindServerError}
	ErrServerRejected       = &Error{Kind: KindServerRejected}
	ErrAlreadyPending       = &Error{Kind: KindAlreadyPending}
	ErrNothingToCopy        = &Error{Kind: KindNothingToCopy}
	ErrClipboardUnavailable = &Error{Kind: KindClipboardUnavailable}
)

// Error is a classified failure.
type Error struct {
	Kind Kind
	// Op names the operation, e.g. "decrypt".
	Op string
	// Msg is the user-facing text. For ServerRejected it is the service's error field.
	Msg string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var s string
	if e.Op != "" {
		s = e.Op + ": "
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		s += e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		s += e.Msg
	case e.Err != nil:
		s += e.Kind.String() + ": " + e.Err.Error()
	default:
		s += e.Kind.String()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New builds a classified error.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap classifies err. It returns nil when err is nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the text to show the user for err.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Msg != "" {
		return e.Msg
	}
	return e.Error()
}
