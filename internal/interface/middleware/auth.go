package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/conduit-identity/internal/domain/apperror"
	"github.com/oksasatya/conduit-identity/internal/infrastructure/token"
)

// AuthScheme is the Authorization scheme clients present their token with.
const AuthScheme = "Token"

var (
	errNoAuthHeader  = errors.New("authorization header missing")
	errBadAuthHeader = errors.New("authorization header malformed")
)

// TokenVerifier turns a raw token into verified identity.
type TokenVerifier interface {
	Verify(raw string) (*token.TokenInfo, error)
}

type tokenInfoKey struct{}

// WithTokenInfo returns a copy of ctx carrying info.
func WithTokenInfo(ctx context.Context, info *token.TokenInfo) context.Context {
	return context.WithValue(ctx, tokenInfoKey{}, info)
}

// TokenInfoFrom returns the identity stored by Auth, if any.
func TokenInfoFrom(ctx context.Context) (*token.TokenInfo, bool) {
	info, ok := ctx.Value(tokenInfoKey{}).(*token.TokenInfo)
	return info, ok && info != nil
}

// Auth verifies the "Authorization: Token <jwt>" header and stores the
// resulting identity on the request context. On any failure the chain is
// aborted and the error left for ErrorTranslator.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearer(c.GetHeader("Authorization"))
		if err != nil {
			_ = c.Error(apperror.Unauthorized("Missing or malformed authorization header.", err))
			c.Abort()
			return
		}
		info, err := verifier.Verify(raw)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(WithTokenInfo(c.Request.Context(), info))
		c.Next()
	}
}

func bearer(header string) (string, error) {
	if header == "" {
		return "", errNoAuthHeader
	}
	scheme, cred, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, AuthScheme) {
		return "", errBadAuthHeader
	}
	cred = strings.TrimSpace(cred)
	if cred == "" || strings.ContainsAny(cred, " \t") {
		return "", errBadAuthHeader
	}
	return cred, nil
}
