package httpapi

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/auth"
)

const (
	// AccessTokenCookie and RefreshTokenCookie name the bearer cookies.
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	authScheme   = "Bearer"
	principalKey = "principal"
)

// AccessTokenValidator verifies access tokens; satisfied by
// auth.TokenService.
type AccessTokenValidator interface {
	ValidateAccessToken(raw string) (*auth.AccessClaims, error)
}

// PrincipalLoader resolves the sanitized principal behind a verified token;
// satisfied by the credential store.
type PrincipalLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*auth.Principal, error)
}

// RequireAuth guards a route: it extracts the bearer access token (cookie
// first, then Authorization header), validates it, loads the principal, and
// attaches it to the request. Access tokens are self-sufficient; the
// refresh-token slot is never consulted here.
func RequireAuth(tokens AccessTokenValidator, principals PrincipalLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := extractToken(c)
		if raw == "" {
			return auth.ErrTokenMissing
		}

		claims, err := tokens.ValidateAccessToken(raw)
		if err != nil {
			return err
		}

		id, err := claims.PrincipalID()
		if err != nil {
			return err
		}

		principal, err := principals.FindByID(c.UserContext(), id)
		if err != nil {
			// Token outlived the account.
			if errors.IsNotFound(err) {
				return auth.ErrIdentityNotFound
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to load principal")
		}

		c.Locals(principalKey, principal)
		c.SetUserContext(auth.WithPrincipal(c.UserContext(), principal))

		return c.Next()
	}
}

// PrincipalFrom returns the principal RequireAuth attached to the request.
func PrincipalFrom(c *fiber.Ctx) (*auth.Principal, bool) {
	principal, ok := c.Locals(principalKey).(*auth.Principal)
	return principal, ok
}

func extractToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(AccessTokenCookie); cookie != "" {
		return cookie
	}

	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], authScheme) {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
