// Package valueobject holds the validated primitives of the user domain.
// Every type here can only be obtained through its New* constructor, so a
// held value is always valid.
package valueobject

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxImageLen = 2048

var validate = validator.New()

// ValidationError names the field that failed its shape check and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Email is the identity key of a user.
type Email struct{ value string }

func NewEmail(raw string) (Email, error) {
	if raw == "" {
		return Email{}, invalid("email", "is required")
	}
	if err := validate.Var(raw, "email"); err != nil {
		return Email{}, invalid("email", "must be a valid email")
	}
	return Email{value: raw}, nil
}

func (e Email) String() string { return e.value }

func (e Email) MarshalJSON() ([]byte, error) { return json.Marshal(e.value) }

func (e *Email) UnmarshalJSON(b []byte) error {
	return unmarshalWith(b, NewEmail, e)
}

// Username is the public handle of a user.
type Username struct{ value string }

func NewUsername(raw string) (Username, error) {
	if strings.TrimSpace(raw) == "" {
		return Username{}, invalid("username", "is required")
	}
	return Username{value: raw}, nil
}

func (u Username) String() string { return u.value }

func (u Username) MarshalJSON() ([]byte, error) { return json.Marshal(u.value) }

func (u *Username) UnmarshalJSON(b []byte) error {
	return unmarshalWith(b, NewUsername, u)
}

// Password is a raw password as received from a request. It never
// serializes and prints redacted.
type Password struct{ value string }

var errPasswordMarshal = errors.New("password is not serializable")

func NewPassword(raw string) (Password, error) {
	if raw == "" {
		return Password{}, invalid("password", "is required")
	}
	return Password{value: raw}, nil
}

// Hash returns the lowercase hex SHA-256 digest of the password.
func (p Password) Hash() string {
	sum := sha256.Sum256([]byte(p.value))
	return hex.EncodeToString(sum[:])
}

// Plain exposes the raw value for slow hashers.
func (p Password) Plain() string { return p.value }

func (p Password) String() string { return "[REDACTED]" }

func (p Password) MarshalJSON() ([]byte, error) { return nil, errPasswordMarshal }

// Bio is free-form profile text.
type Bio struct{ value string }

func NewBio(raw string) (Bio, error) {
	return Bio{value: raw}, nil
}

func (b Bio) String() string { return b.value }

func (b Bio) MarshalJSON() ([]byte, error) { return json.Marshal(b.value) }

func (b *Bio) UnmarshalJSON(data []byte) error {
	return unmarshalWith(data, NewBio, b)
}

// Image is a profile picture reference, usually a URL.
type Image struct{ value string }

func NewImage(raw string) (Image, error) {
	if len(raw) > maxImageLen {
		return Image{}, invalid("image", "must be at most 2048 characters long")
	}
	return Image{value: raw}, nil
}

func (i Image) String() string { return i.value }

func (i Image) MarshalJSON() ([]byte, error) { return json.Marshal(i.value) }

func (i *Image) UnmarshalJSON(b []byte) error {
	return unmarshalWith(b, NewImage, i)
}

// Token is an opaque signed credential.
type Token struct{ value string }

func NewToken(raw string) (Token, error) {
	if strings.TrimSpace(raw) == "" {
		return Token{}, invalid("token", "is required")
	}
	return Token{value: raw}, nil
}

func (t Token) String() string { return t.value }

func (t Token) MarshalJSON() ([]byte, error) { return json.Marshal(t.value) }

func (t *Token) UnmarshalJSON(b []byte) error {
	return unmarshalWith(b, NewToken, t)
}

func unmarshalWith[T any](b []byte, ctor func(string) (T, error), dst *T) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ctor(raw)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// OptionalBio builds a *Bio from a nullable raw value.
func OptionalBio(raw *string) (*Bio, error) {
	if raw == nil {
		return nil, nil
	}
	b, err := NewBio(*raw)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// OptionalImage builds an *Image from a nullable raw value.
func OptionalImage(raw *string) (*Image, error) {
	if raw == nil {
		return nil, nil
	}
	i, err := NewImage(*raw)
	if err != nil {
		return nil, err
	}
	return &i, nil
}
