package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vidtube/backend/internal/auth"
)

// CookieConfig controls the auth cookie attributes.
type CookieConfig struct {
	Domain     string
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func setAuthCookies(c *fiber.Ctx, cfg CookieConfig, pair auth.TokenPair) {
	setCookie(c, cfg, AccessTokenCookie, pair.AccessToken, cfg.AccessTTL)
	setCookie(c, cfg, RefreshTokenCookie, pair.RefreshToken, cfg.RefreshTTL)
}

func clearAuthCookies(c *fiber.Ctx, cfg CookieConfig) {
	expireCookie(c, cfg, AccessTokenCookie)
	expireCookie(c, cfg, RefreshTokenCookie)
}

func setCookie(c *fiber.Ctx, cfg CookieConfig, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Domain:   cfg.Domain,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: "Lax",
	})
}

func expireCookie(c *fiber.Ctx, cfg CookieConfig, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Domain:   cfg.Domain,
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: "Lax",
	})
}
