package valueobject

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmail(t *testing.T) {
	valid := []string{"jake@jake.jake", "alisabzevari@gmail.com", "a.b+c@example.co.uk"}
	for _, raw := range valid {
		e, err := NewEmail(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, raw, e.String())

		b, err := json.Marshal(e)
		require.NoError(t, err)
		assert.Equal(t, `"`+raw+`"`, string(b))

		var back Email
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, e, back)
	}

	invalidInputs := []string{"", "jake", "jake@", "@jake.jake", "jake jake@x.y", "a@b@c"}
	for _, raw := range invalidInputs {
		_, err := NewEmail(raw)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "expected validation error for %q", raw)
		assert.Equal(t, "email", verr.Field)
	}
}

func TestNewUsername(t *testing.T) {
	u, err := NewUsername("jake")
	require.NoError(t, err)
	assert.Equal(t, "jake", u.String())

	for _, raw := range []string{"", "   "} {
		_, err := NewUsername(raw)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "username", verr.Field)
		assert.Equal(t, "username is required", verr.Error())
	}
}

func TestPasswordHashIsDeterministic(t *testing.T) {
	p, err := NewPassword("jakejake")
	require.NoError(t, err)

	assert.Equal(t, p.Hash(), p.Hash())
	assert.Len(t, p.Hash(), 64)
	assert.NotEqual(t, "jakejake", p.Hash())

	other, err := NewPassword("jakejake!")
	require.NoError(t, err)
	assert.NotEqual(t, p.Hash(), other.Hash())

	_, err = NewPassword("")
	assert.Error(t, err)
}

func TestPasswordNeverSerializes(t *testing.T) {
	p, err := NewPassword("secret")
	require.NoError(t, err)

	_, err = json.Marshal(struct {
		Password Password `json:"password"`
	}{p})
	assert.Error(t, err)
	assert.NotContains(t, p.String(), "secret")
}

func TestOptionalFields(t *testing.T) {
	b, err := OptionalBio(nil)
	require.NoError(t, err)
	assert.Nil(t, b)

	raw := "I work at statefarm"
	b, err = OptionalBio(&raw)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, raw, b.String())

	long := strings.Repeat("x", maxImageLen+1)
	_, err = OptionalImage(&long)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "image", verr.Field)

	out, err := json.Marshal(struct {
		Bio   *Bio   `json:"bio"`
		Image *Image `json:"image"`
	}{Bio: b})
	require.NoError(t, err)
	assert.JSONEq(t, `{"bio":"I work at statefarm","image":null}`, string(out))
}

func TestNewToken(t *testing.T) {
	tok, err := NewToken("jwt.token.here")
	require.NoError(t, err)
	assert.Equal(t, "jwt.token.here", tok.String())

	_, err = NewToken(" ")
	assert.Error(t, err)
}
