// Package errors defines the failure taxonomy shared by the gateway,
// the token store and the session manager.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure so callers can pick a recovery path
// without inspecting messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindNetwork
	KindServer
	KindStorage
	KindState
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindStorage:
		return "storage"
	case KindState:
		return "state"
	default:
		return "unknown"
	}
}

// Error is the concrete failure carried across package boundaries.
// Message is meant for display; Err keeps the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches kind sentinels, so errors.Is(err, ErrAuth) holds for
// every auth failure regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*kindSentinel)
	return ok && t.kind == e.Kind
}

type kindSentinel struct{ kind Kind }

func (s *kindSentinel) Error() string { return s.kind.String() + " error" }

var (
	ErrValidation error = &kindSentinel{KindValidation}
	ErrAuth       error = &kindSentinel{KindAuth}
	ErrNetwork    error = &kindSentinel{KindNetwork}
	ErrServer     error = &kindSentinel{KindServer}
	ErrStorage    error = &kindSentinel{KindStorage}
	ErrState      error = &kindSentinel{KindState}
)

var (
	ErrOperationInProgress = &Error{Kind: KindState, Message: "an authentication operation is already in progress"}
	ErrNotAuthenticated    = &Error{Kind: KindState, Message: "not authenticated"}
	ErrAlreadyHydrated     = &Error{Kind: KindState, Message: "session already authenticated, log out first"}
	ErrSuperseded          = &Error{Kind: KindState, Message: "operation superseded by a newer session change"}
	ErrEmptyMessage        = &Error{Kind: KindValidation, Message: "message text is empty"}
	ErrMessageNotFound     = &Error{Kind: KindValidation, Message: "message not found"}
	ErrInvalidTransition   = &Error{Kind: KindValidation, Message: "message is not pending"}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the display message of err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

// IsUnauthorized reports whether the server rejected the bearer token.
func IsUnauthorized(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Kind == KindAuth && e.Status == 401
}
