package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/projecthub-api/internal/authz"
	"github.com/noah-isme/projecthub-api/internal/models"
)

const (
	localUserID   = "user_id"
	localUserRole = "user_role"
)

// SetIdentity binds the resolved caller to the request.
func SetIdentity(c *fiber.Ctx, identity authz.Identity) {
	c.Locals(localUserID, identity.ID)
	c.Locals(localUserRole, string(identity.Role))
}

// IdentityFromContext returns the caller bound by the JWT middleware, or the
// zero identity when the request is anonymous.
func IdentityFromContext(c *fiber.Ctx) authz.Identity {
	if c == nil {
		return authz.Identity{}
	}

	var identity authz.Identity
	switch v := c.Locals(localUserID).(type) {
	case uint:
		identity.ID = v
	case int:
		if v > 0 {
			identity.ID = uint(v)
		}
	}

	role := models.Role(normalizeRoleValue(c.Locals(localUserRole)))
	if role.Valid() {
		identity.Role = role
	}

	return identity
}
