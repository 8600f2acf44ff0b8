package middleware

import (
	"strings"

	"storefront-otp/util"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RequireAdmin accepts HS256 bearer tokens signed with secret that carry the "admin" role.
// Without a secret every request is refused with 503, unless allowOpen is set for development.
func RequireAdmin(secret string, allowOpen bool) fiber.Handler {
	if secret == "" {
		if allowOpen {
			log.Warn().Msg("OTP_EXPOSE_ACTIVE set without ADMIN_JWT_SECRET, admin routes are unprotected")
			return func(c *fiber.Ctx) error {
				return c.Next()
			}
		}
		log.Warn().Msg("ADMIN_JWT_SECRET not set, admin routes are disabled")
		return func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "admin access not configured"})
		}
	}
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		claims, err := util.ParseAdminToken(token, key)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		if !claims.HasRole("admin") {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
		}

		c.Locals("subject", claims.Subject)
		return c.Next()
	}
}
