package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBody struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	User *loginBody `json:"user" binding:"required"`
}

func bind(t *testing.T, body string) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Init()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var req loginRequest
	return c.ShouldBindJSON(&req)
}

func TestToMessagesMissingFields(t *testing.T) {
	err := bind(t, `{"user":{}}`)
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"user.email is required", "user.password is required"}, ToMessages(err))
}

func TestToMessagesMissingRoot(t *testing.T) {
	err := bind(t, `{}`)
	require.Error(t, err)
	assert.Equal(t, []string{"user is required"}, ToMessages(err))
}

func TestToMessagesBadJSON(t *testing.T) {
	err := bind(t, `{"user":`)
	require.Error(t, err)
	assert.Equal(t, []string{"request body is not valid json"}, ToMessages(err))

	err = bind(t, `{"user":{"email":42,"password":"x"}}`)
	require.Error(t, err)
	msgs := ToMessages(err)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "must be a string")
}

func TestToMessagesEmptyBody(t *testing.T) {
	err := bind(t, ``)
	require.Error(t, err)
	assert.Equal(t, []string{"request body is required"}, ToMessages(err))
}

func TestToMessagesNil(t *testing.T) {
	assert.Nil(t, ToMessages(nil))
}
