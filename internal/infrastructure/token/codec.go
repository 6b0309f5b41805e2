package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/conduit-identity/internal/domain/apperror"
	vo "github.com/oksasatya/conduit-identity/internal/domain/valueobject"
)

var (
	errMissingClaims = errors.New("token is missing required claims")
	errBadMethod     = errors.New("unexpected signing method")
)

// Codec issues and verifies HS256 signed tokens. It holds no mutable state
// and is safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewCodec builds a codec. A zero ttl issues tokens without an exp claim.
// A non-empty issuer is stamped on issued tokens and required on verified ones.
func NewCodec(secret []byte, ttl time.Duration, issuer string) *Codec {
	return &Codec{secret: secret, ttl: ttl, issuer: issuer, now: time.Now}
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenInfo is the verified identity carried by a token. Only Verify
// produces one.
type TokenInfo struct {
	username vo.Username
	email    vo.Email
	token    vo.Token
}

func (i *TokenInfo) Username() vo.Username { return i.username }
func (i *TokenInfo) Email() vo.Email       { return i.email }
func (i *TokenInfo) Token() vo.Token       { return i.token }

func (c *Codec) Issue(username vo.Username, email vo.Email) (vo.Token, error) {
	now := c.now()
	claims := &Claims{
		Email: email.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  username.String(),
			Issuer:   c.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(c.secret)
	if err != nil {
		return vo.Token{}, err
	}
	return vo.NewToken(s)
}

func (c *Codec) Verify(raw string) (*TokenInfo, error) {
	tok, err := vo.NewToken(raw)
	if err != nil {
		return nil, apperror.Unauthorized("Missing authorization token.", err)
	}

	opts := []jwt.ParserOption{jwt.WithTimeFunc(c.now), jwt.WithIssuedAt()}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadMethod
		}
		return c.secret, nil
	}, opts...)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid authorization token.", err)
	}
	if !parsed.Valid || claims.Subject == "" || claims.Email == "" {
		return nil, apperror.Unauthorized("Invalid authorization token.", errMissingClaims)
	}

	username, err := vo.NewUsername(claims.Subject)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid authorization token.", err)
	}
	email, err := vo.NewEmail(claims.Email)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid authorization token.", err)
	}
	return &TokenInfo{username: username, email: email, token: tok}, nil
}
