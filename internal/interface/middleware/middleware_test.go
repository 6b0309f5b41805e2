package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/conduit-identity/internal/domain/apperror"
	vo "github.com/oksasatya/conduit-identity/internal/domain/valueobject"
	"github.com/oksasatya/conduit-identity/internal/infrastructure/token"
	"github.com/oksasatya/conduit-identity/pkg/helpers"
	"github.com/oksasatya/conduit-identity/pkg/response"
)

var codec = token.NewCodec([]byte("test-secret"), 0, "conduit")

func issue(t *testing.T) vo.Token {
	t.Helper()
	u, err := vo.NewUsername("ali")
	require.NoError(t, err)
	e, err := vo.NewEmail("alisabzevari@gmail.com")
	require.NoError(t, err)
	tok, err := codec.Issue(u, e)
	require.NoError(t, err)
	return tok
}

// protectedEngine wires ErrorTranslator -> Auth -> handler and counts
// handler invocations.
func protectedEngine(calls *int, seen **token.TokenInfo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorTranslator(helpers.NewDiscardLogger()))
	r.GET("/protected", Auth(codec), func(c *gin.Context) {
		*calls++
		info, ok := TokenInfoFrom(c.Request.Context())
		if ok {
			*seen = info
		}
		c.Status(http.StatusOK)
	})
	return r
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.ErrorEnvelope {
	t.Helper()
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotEmpty(t, env.Errors.Body)
	return env
}

func TestAuthRejectsBeforeHandler(t *testing.T) {
	tok := issue(t)
	headers := map[string]string{
		"missing":       "",
		"bearer scheme": "Bearer " + tok.String(),
		"no credential": "Token",
		"blank":         "Token    ",
		"extra parts":   "Token " + tok.String() + " extra",
		"garbage":       "Token not.a.jwt",
	}
	for name, h := range headers {
		t.Run(name, func(t *testing.T) {
			calls := 0
			var seen *token.TokenInfo
			r := protectedEngine(&calls, &seen)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if h != "" {
				req.Header.Set("Authorization", h)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, 0, calls)
			decodeEnvelope(t, w)
		})
	}
}

func TestAuthStoresTokenInfo(t *testing.T) {
	tok := issue(t)
	calls := 0
	var seen *token.TokenInfo
	r := protectedEngine(&calls, &seen)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token "+tok.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, calls)
	require.NotNil(t, seen)
	assert.Equal(t, "ali", seen.Username().String())
	assert.Equal(t, "alisabzevari@gmail.com", seen.Email().String())
	assert.Equal(t, tok, seen.Token())
}

func TestTokenInfoFromEmptyContext(t *testing.T) {
	_, ok := TokenInfoFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}

func TestErrorTranslatorMapping(t *testing.T) {
	_, voErr := vo.NewEmail("bad")
	cases := []struct {
		name   string
		err    error
		status int
		body   []string
	}{
		{"validation", apperror.Validation("user.email is required"), http.StatusBadRequest, []string{"user.email is required"}},
		{"value object", voErr, http.StatusBadRequest, []string{"email must be a valid email"}},
		{"bad credentials", apperror.InvalidCredentials(), http.StatusUnauthorized, []string{"Invalid username or password."}},
		{"login target absent", apperror.UserNotFound("xxx"), http.StatusUnauthorized, []string{"User xxx not found."}},
		{"conflict", apperror.UserAlreadyExists(nil), http.StatusConflict, []string{"The specified user already exists."}},
		{"unknown", errors.New("dial tcp 10.0.0.5:5432: i/o timeout"), http.StatusInternalServerError, []string{"Internal server error."}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(ErrorTranslator(helpers.NewDiscardLogger()))
			r.GET("/", func(c *gin.Context) { _ = c.Error(tc.err) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.body, decodeEnvelope(t, w).Errors.Body)
		})
	}
}

func TestErrorTranslatorRecoversPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorTranslator(helpers.NewDiscardLogger()))
	r.GET("/", func(c *gin.Context) { panic("secret internal detail") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.Equal(t, []string{"Internal server error."}, env.Errors.Body)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	var got string
	r.GET("/", func(c *gin.Context) { got = c.GetString("request_id") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, got)
	assert.Equal(t, got, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "3f2b8e4a-1c7d-4e5f-9a0b-6c8d7e9f0a1b")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "3f2b8e4a-1c7d-4e5f-9a0b-6c8d7e9f0a1b", got)
}
