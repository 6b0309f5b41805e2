package apperror

import (
	"errors"
	"net/http"

	"github.com/oksasatya/conduit-identity/internal/domain/valueobject"
)

// Kind classifies a failure for translation into an HTTP response.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFoundAsUnauthorized
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFoundAsUnauthorized:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Status maps a kind to its HTTP status code.
// A missing login target is reported as 401 so callers cannot probe for accounts.
func Status(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized, KindNotFoundAsUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure carrying user-visible messages.
type Error struct {
	Kind     Kind
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if len(e.Messages) > 0 {
		msg = e.Messages[0]
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, messages ...string) *Error {
	return &Error{Kind: kind, Messages: messages}
}

func Wrap(kind Kind, err error, messages ...string) *Error {
	return &Error{Kind: kind, Messages: messages, Err: err}
}

func Validation(messages ...string) *Error {
	return New(KindValidation, messages...)
}

func Unauthorized(message string, cause error) *Error {
	return Wrap(KindUnauthorized, cause, message)
}

func UserNotFound(usernameOrEmail string) *Error {
	return New(KindNotFoundAsUnauthorized, "User "+usernameOrEmail+" not found.")
}

func InvalidCredentials() *Error {
	return New(KindUnauthorized, "Invalid username or password.")
}

func UserAlreadyExists(cause error) *Error {
	return Wrap(KindConflict, cause, "The specified user already exists.")
}

// KindOf classifies any error. Value object failures count as validation.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	var ve *valueobject.ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	return KindUnknown
}

// MessagesOf returns the user-visible messages for err. Unknown failures
// never expose their cause; a classified error without messages gets the
// generic message for its kind.
func MessagesOf(err error) []string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindUnknown {
		if len(ae.Messages) > 0 {
			return ae.Messages
		}
		return []string{genericMessage(ae.Kind)}
	}
	var ve *valueobject.ValidationError
	if errors.As(err, &ve) {
		return []string{ve.Error()}
	}
	return []string{"Internal server error."}
}

func genericMessage(k Kind) string {
	switch k {
	case KindValidation:
		return "Invalid request."
	case KindUnauthorized, KindNotFoundAsUnauthorized:
		return "Unauthorized."
	case KindConflict:
		return "Conflict."
	default:
		return "Internal server error."
	}
}
