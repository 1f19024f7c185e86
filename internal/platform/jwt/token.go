// Package jwtmw issues and verifies bearer tokens and gates gin routes on them.
package jwtmw

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"account_backend/internal/feature/account/domain"
	"account_backend/internal/feature/account/domain/entity"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = time.Hour

// ErrEmptySecret is returned by NewTokenService when no signing key is given.
var ErrEmptySecret = errors.New("jwt secret must not be empty")

// Identity is the caller resolved from a verified token.
type Identity struct {
	AccountID string
	Role      entity.Role
}

// Claims is the payload of an access token. The account id is carried in
// the standard "sub" claim.
type Claims struct {
	Role entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 access tokens.
// The secret is injected once at startup; rotating it invalidates every
// token issued with the previous value.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customises a TokenService.
type Option func(*TokenService)

// WithClock overrides the time source used for iat/exp and for validation.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a TokenService. A non-positive ttl falls back to DefaultTTL.
func NewTokenService(secret string, ttl time.Duration, opts ...Option) (*TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue creates a signed token for the given account.
func (s *TokenService) Issue(ctx context.Context, accountID string, role entity.Role) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := s.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, structure and expiry of tokenStr and returns the
// identity it carries. Every failure collapses into the same AuthError so
// callers cannot tell a bad signature from an expired token.
func (s *TokenService) Verify(ctx context.Context, tokenStr string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (any, error) {
			// Only HMAC is accepted, never "none" or asymmetric algorithms.
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return Identity{}, domain.Auth(domain.MsgInvalidToken)
	}
	if claims.Subject == "" || !claims.Role.IsValid() {
		return Identity{}, domain.Auth(domain.MsgInvalidToken)
	}

	return Identity{AccountID: claims.Subject, Role: claims.Role}, nil
}
