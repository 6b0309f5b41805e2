package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/conduit-identity/internal/interface/http"
	"github.com/oksasatya/conduit-identity/internal/interface/middleware"
)

// UserModule wires the user handlers into routes.
// Public: POST /api/users/login, POST /api/users
// Protected: GET /api/users, PUT /api/users
// Bodies are decoded before the auth gate so a malformed body is a 400
// whether or not a token is present.
type UserModule struct {
	Handler  *handlers.UserHandler
	Verifier middleware.TokenVerifier
}

func NewUserModule(h *handlers.UserHandler, verifier middleware.TokenVerifier) *UserModule {
	return &UserModule{Handler: h, Verifier: verifier}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := middleware.Auth(m.Verifier)

	users := rg.Group("/users")
	users.POST("/login", handlers.Decode[handlers.LoginRequest](), m.Handler.Login)
	users.POST("", handlers.Decode[handlers.RegisterRequest](), m.Handler.Register)
	users.GET("", auth, m.Handler.GetCurrentUser)
	users.PUT("", handlers.Decode[handlers.UpdateRequest](), auth, m.Handler.UpdateCurrentUser)
}
