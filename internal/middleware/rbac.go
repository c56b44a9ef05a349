package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/projecthub-api/internal/authz"
	"github.com/noah-isme/projecthub-api/internal/models"
	"github.com/noah-isme/projecthub-api/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed
// roles before the rest of the chain runs.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := append([]models.Role(nil), roles...)

	return func(c *fiber.Ctx) error {
		err := authz.Authorize(IdentityFromContext(c), allowed...)
		switch {
		case err == nil:
			return c.Next()
		case errors.Is(err, authz.ErrUnauthenticated):
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		default:
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case models.Role:
		return strings.ToLower(strings.TrimSpace(string(v)))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
