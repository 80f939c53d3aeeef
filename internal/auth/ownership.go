package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/saas-backend/internal/domain"
	apperrors "github.com/spec-kit/saas-backend/pkg/util"
)

// Forbidden reason codes emitted by the ownership guard.
const (
	ReasonResourceIDNotProvided      = "RESOURCE_ID_NOT_PROVIDED"
	ReasonResourceAccessUnauthorized = "RESOURCE_ACCESS_UNAUTHORIZED"
)

// ResourceLookup fetches a single resource by id for ownership checks.
// Implementations return a NOT_FOUND domain error when the resource is
// absent.
type ResourceLookup[T any] interface {
	FindResource(ctx context.Context, id string) (T, error)
}

// RequireOwnership restricts a route to the resource's owner or an admin.
// The same algorithm protects any resource kind: it is parameterized by
// the lookup capability and by ownerID, which selects the owner-id field
// of the fetched resource.
//
// Order of checks matters: admins bypass ownership entirely, a missing
// path id fails before any store lookup, and an absent resource reports
// NOT_FOUND before ownership is compared. The NotFound-before-Forbidden
// ordering leaks resource existence to non-owners; that tradeoff is
// deliberate and kept.
func RequireOwnership[T any](lookup ResourceLookup[T], ownerID func(T) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			// Unreachable when an authentication strategy ran first.
			return apperrors.NewUnauthorized("request without authorization token")
		}

		if principal.Role == domain.RoleAdmin {
			return c.Next()
		}

		resourceID := c.Params("id")
		if resourceID == "" {
			return apperrors.NewForbiddenCode(ReasonResourceIDNotProvided, "resource id not provided")
		}

		resource, err := lookup.FindResource(c.Context(), resourceID)
		if err != nil {
			return apperrors.MapError(err)
		}

		if ownerID(resource) != principal.ID {
			return apperrors.NewForbiddenCode(ReasonResourceAccessUnauthorized, "resource access unauthorized")
		}
		return c.Next()
	}
}
