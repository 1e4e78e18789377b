package domain

import "errors"

// Kind classifies a failure for callers. The zero value is KindInternal.
type Kind int

const (
	KindInternal Kind = iota
	KindConflict
	KindUnauthorized
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Error carries a kind and a message safe to show to clients.
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

// Is matches sentinels by identity and bare kind errors by kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || (t.Err == nil && e.Kind == t.Kind && e.Msg == t.Msg)
}

var (
	ErrNotFound           = &Error{Kind: KindNotFound, Msg: "task not found"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Msg: "user not found"}
	ErrEmailTaken         = &Error{Kind: KindConflict, Msg: "user already exists"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Msg: "invalid credentials"}
	ErrInvalidToken       = &Error{Kind: KindUnauthorized, Msg: "invalid or expired token"}
	ErrMissingSecret      = &Error{Kind: KindInternal, Msg: "token signing secret is not configured"}
)

// Validation builds a validation failure with the given message.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// Internal wraps an unexpected failure.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf returns the kind of the first domain error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}
