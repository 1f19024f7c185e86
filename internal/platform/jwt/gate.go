package jwtmw

import (
	"context"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"account_backend/internal/api"
	"account_backend/internal/feature/account/domain"
	"account_backend/internal/feature/account/domain/entity"
)

// HeaderAuthorization is the request header carrying the bearer token.
const HeaderAuthorization = "Authorization"

// ContextIdentity is the gin context key holding the authenticated Identity.
const ContextIdentity = "identity"

// TokenVerifier resolves a raw token into an Identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Gate authenticates requests from their Authorization header.
// Authentication and authorization are separate steps: Authenticate turns a
// header into an Identity, Authorize checks that identity against a role set.
type Gate struct {
	verifier TokenVerifier
}

// NewGate creates a Gate backed by the given verifier.
func NewGate(verifier TokenVerifier) *Gate {
	return &Gate{verifier: verifier}
}

// ParseBearer extracts the token from an "Authorization: Bearer <token>" value.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", domain.Auth(domain.MsgHeaderNotFound)
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", domain.Auth(domain.MsgInvalidFormat)
	}
	return parts[1], nil
}

// Authenticate resolves the identity behind an Authorization header value.
func (g *Gate) Authenticate(ctx context.Context, header string) (Identity, error) {
	token, err := ParseBearer(header)
	if err != nil {
		return Identity{}, err
	}
	id, err := g.verifier.Verify(ctx, token)
	if err != nil {
		return Identity{}, domain.Auth(domain.MsgInvalidToken)
	}
	return id, nil
}

// Authorize fails with an AccessDenied error unless id holds one of roles.
func Authorize(id Identity, roles ...entity.Role) error {
	if !slices.Contains(roles, id.Role) {
		return domain.AccessDenied(domain.MsgRoleDenied)
	}
	return nil
}

// RequireAuth returns a gin middleware that authenticates the request and
// attaches the Identity to both the gin context and the request context.
func (g *Gate) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := g.Authenticate(c.Request.Context(), c.GetHeader(HeaderAuthorization))
		if err != nil {
			api.WriteError(c, err)
			return
		}
		c.Set(ContextIdentity, id)
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// RequireRole returns a gin middleware that admits only the given roles.
// It must run after RequireAuth.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c.Request.Context())
		if !ok {
			api.WriteError(c, domain.Auth(domain.MsgHeaderNotFound))
			return
		}
		if err := Authorize(id, roles...); err != nil {
			api.WriteError(c, err)
			return
		}
		c.Next()
	}
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by RequireAuth.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
