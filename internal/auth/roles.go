package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicwatch/hazard-service/internal/domain"
	"github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

// RequireRole ensures the principal holds one of the allowed roles. With
// no roles listed any authenticated caller passes.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return errorutil.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return errorutil.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireStaff ensures the principal holds a staff role.
func RequireStaff() fiber.Handler {
	return RequireRole(domain.RoleAnalyst, domain.RoleAuthority, domain.RoleAdmin)
}
