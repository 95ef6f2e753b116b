package middleware

import (
	"slices"
	"strings"

	"agrimarket/internal/models"
	"agrimarket/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/labstack/gommon/log"
)

const principalKey = "principal"

// AuthRequired is a Fiber middleware to check for a valid JWT token. The
// caller's models.Principal is stored for Principal to retrieve.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Debugf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		principal, err := services.PrincipalFromClaims(claims)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(principalKey, principal)
		c.Locals("username", claims["username"])
		return c.Next()
	}
}

// RequireRole lets the request through only for the given roles. It must run
// after AuthRequired.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := Principal(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		if !slices.Contains(roles, principal.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Your role is not allowed to perform this action",
			})
		}
		return c.Next()
	}
}

// Principal returns the authenticated caller of the request.
func Principal(c *fiber.Ctx) (models.Principal, bool) {
	principal, ok := c.Locals(principalKey).(models.Principal)
	return principal, ok
}
