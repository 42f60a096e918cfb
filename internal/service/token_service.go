package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront-service/internal/apperr"
	"storefront-service/internal/entity"
)

// UserClaims is the signed payload embedded in issued tokens: the public
// account fields only, never the password hash.
type UserClaims struct {
	UserID    int    `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies bearer tokens. It is stateless; Verify
// does no I/O and never consults the user store.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService wraps the signing secret. A ttl of zero issues tokens
// without an expiry claim, matching deployments that predate expiring
// tokens.
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl}
}

// Issue signs a token for an authenticated user.
func (s *TokenService) Issue(user *entity.User) (string, error) {
	now := time.Now()
	claims := &UserClaims{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses and validates a token string. Any failure, malformed
// token, bad signature, foreign secret, expired, collapses to
// ErrAuthFailed.
func (s *TokenService) Verify(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.ErrAuthFailed
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperr.ErrAuthFailed
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, apperr.ErrAuthFailed
	}

	return claims, nil
}

// Secret exposes the signing key for the route-level JWT middleware, which
// needs it to perform the same validation before handlers run.
func (s *TokenService) Secret() []byte {
	return s.secret
}
