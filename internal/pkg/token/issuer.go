// Package token issues and verifies the signed session credential handed to
// clients after register/login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the validity window of a session token.
const DefaultTTL = 30 * 24 * time.Hour

var (
	ErrEmptySecret  = errors.New("token: signing secret is empty")
	ErrInvalidToken = errors.New("token: invalid token")
)

// Claims is the JWT payload. Only the user id is carried.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// CookieOptions tells the transport how to deliver the token.
type CookieOptions struct {
	Name     string
	HTTPOnly bool
	Secure   bool
	SameSite string
	MaxAge   time.Duration
}

type Issuer struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
}

func NewIssuer(secret string, ttl time.Duration, cookieName string, secure bool) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cookieName == "" {
		cookieName = "token"
	}
	return &Issuer{
		secret:     []byte(secret),
		ttl:        ttl,
		cookieName: cookieName,
		secure:     secure,
		now:        time.Now,
	}, nil
}

// Issue signs a token for userId and returns it with the cookie settings
// the caller should use to deliver it.
func (i *Issuer) Issue(userId uuid.UUID) (string, CookieOptions, error) {
	now := i.now()
	claims := &Claims{
		UserID: userId.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userId.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", CookieOptions{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, i.CookieOptions(), nil
}

func (i *Issuer) CookieOptions() CookieOptions {
	return CookieOptions{
		Name:     i.cookieName,
		HTTPOnly: true,
		Secure:   i.secure,
		SameSite: "Lax",
		MaxAge:   i.ttl,
	}
}

// Verify checks signature and expiry and returns the user id in the token.
func (i *Issuer) Verify(tokenStr string) (uuid.UUID, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	userId, err := uuid.Parse(claims.UserID)
	if err != nil || userId == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}
	return userId, nil
}
