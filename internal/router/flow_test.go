package router_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/conduit-identity/config"
	"github.com/oksasatya/conduit-identity/internal/container"
	"github.com/oksasatya/conduit-identity/internal/infrastructure/memory"
	"github.com/oksasatya/conduit-identity/internal/router"
	"github.com/oksasatya/conduit-identity/pkg/helpers"
)

type userBody struct {
	User struct {
		Email    string  `json:"email"`
		Token    string  `json:"token"`
		Username string  `json:"username"`
		Bio      *string `json:"bio"`
		Image    *string `json:"image"`
	} `json:"user"`
}

func newMemoryRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{JWTSecret: "flow-secret", JWTIssuer: "conduit", PasswordHasher: "sha256", DebugMetricsEnabled: true}
	c, err := container.New(cfg, helpers.NewDiscardLogger(), memory.NewUserRepository())
	require.NoError(t, err)
	return router.New(c)
}

func decodeUser(t *testing.T, body []byte) userBody {
	t.Helper()
	var u userBody
	require.NoError(t, json.Unmarshal(body, &u))
	return u
}

func TestRegisterLoginGetUpdateFlow(t *testing.T) {
	r := newMemoryRouter(t)

	w := do(r, http.MethodPost, "/api/users", `{"user":{"username":"jake","email":"jake@jake.jake","password":"jakejake"}}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	registered := decodeUser(t, w.Body.Bytes())
	assert.Equal(t, "jake", registered.User.Username)
	assert.NotEmpty(t, registered.User.Token)
	assert.Nil(t, registered.User.Bio)

	w = do(r, http.MethodPost, "/api/users", `{"user":{"username":"jake","email":"jake@jake.jake","password":"jakejake"}}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/api/users/login", jakeLoginBody, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tok := decodeUser(t, w.Body.Bytes()).User.Token

	w = do(r, http.MethodPost, "/api/users/login", `{"user":{"email":"jake@jake.jake","password":"wrong"}}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	expectJSON(t, w, `{"errors":{"body":["Invalid username or password."]}}`)

	w = do(r, http.MethodPost, "/api/users/login", `{"user":{"email":"xxx@jake.jake","password":"jakejake"}}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	expectJSON(t, w, `{"errors":{"body":["User xxx@jake.jake not found."]}}`)

	// scheme is matched case-insensitively and the presented token is echoed
	w = do(r, http.MethodGet, "/api/users", "", map[string]string{"Authorization": "token " + tok})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, tok, decodeUser(t, w.Body.Bytes()).User.Token)

	w = do(r, http.MethodPut, "/api/users", `{"user":{"bio":"I work at statefarm"}}`, map[string]string{"Authorization": "Token " + tok})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeUser(t, w.Body.Bytes())
	require.NotNil(t, updated.User.Bio)
	assert.Equal(t, "I work at statefarm", *updated.User.Bio)
	assert.Equal(t, tok, updated.User.Token)

	w = do(r, http.MethodPut, "/api/users", `{"user":{"email":"jake@statefarm.com"}}`, map[string]string{"Authorization": "Token " + tok})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	moved := decodeUser(t, w.Body.Bytes())
	assert.Equal(t, "jake@statefarm.com", moved.User.Email)
	assert.NotEqual(t, tok, moved.User.Token)

	// the old token now names an email that no longer exists
	w = do(r, http.MethodGet, "/api/users", "", map[string]string{"Authorization": "Token " + tok})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/users", "", map[string]string{"Authorization": "Token " + moved.User.Token})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateRejectsInvalidFields(t *testing.T) {
	r := newMemoryRouter(t)
	w := do(r, http.MethodPost, "/api/users", registerBody, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	tok := decodeUser(t, w.Body.Bytes()).User.Token

	w = do(r, http.MethodPut, "/api/users", `{"user":{"email":"not-an-email"}}`, map[string]string{"Authorization": "Token " + tok})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	expectJSON(t, w, `{"errors":{"body":["email must be a valid email"]}}`)
}

func TestDebugVarsMounted(t *testing.T) {
	w := do(newMemoryRouter(t), http.MethodGet, "/api/debug/vars", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
