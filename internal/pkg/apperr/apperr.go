// Package apperr classifies domain errors so the HTTP layer can map them to
// status codes without knowing each domain's sentinels.
package apperr

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindInvalidState
	KindValidation
	KindResourceExhausted
	KindDependencyFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidState:
		return "invalid_state"
	case KindValidation:
		return "validation"
	case KindResourceExhausted:
		return "resource_exhausted"
	case KindDependencyFailure:
		return "dependency_failure"
	default:
		return "internal"
	}
}

// CodeMaintenance marks the ResourceExhausted error raised while the system is
// in maintenance mode.
const CodeMaintenance = "MAINTENANCE_UNAVAILABLE"

// Error is a classified error. Code is the stable machine-readable identifier
// returned to clients; Message is safe to show to the caller.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches cause to a copy of e. errors.Is(result, e) stays true.
func Wrap(e *Error, cause error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Kind == t.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
