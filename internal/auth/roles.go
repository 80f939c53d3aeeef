package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/saas-backend/internal/domain"
	apperrors "github.com/spec-kit/saas-backend/pkg/util"
)

// RequireRole allows the request iff the principal's role is in the
// allowed set. With no roles declared, authentication alone suffices.
func RequireRole(allowed ...domain.UserRole) fiber.Handler {
	allowedSet := make(map[domain.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("request without authorization token")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
