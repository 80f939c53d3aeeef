package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/saas-backend/internal/crypto"
	"github.com/spec-kit/saas-backend/internal/domain"
	"github.com/spec-kit/saas-backend/internal/repository"
	apperrors "github.com/spec-kit/saas-backend/pkg/util"
)

const (
	principalKey = "auth_principal"
	apiKeyHeader = "X-API-Key"
)

// Principal is the authenticated identity attached to a request. It is
// derived per request from credential verification and never persisted.
// FeatureUsage and PlanID are populated for API-key principals only.
type Principal struct {
	ID           string
	Email        string
	Role         domain.UserRole
	Username     string
	Name         string
	FeatureUsage *domain.FeatureUsage
	PlanID       string
}

// UsageSnapshotter loads the metered feature counters for a principal.
type UsageSnapshotter interface {
	Snapshot(ctx context.Context, userID string) (domain.FeatureUsage, error)
}

// AuthMiddleware turns raw request credentials into a Principal. Each
// Require* handler is one authentication strategy.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
	crypto *crypto.Service
	usage  UsageSnapshotter
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, cryptoSvc *crypto.Service, usage UsageSnapshotter) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, crypto: cryptoSvc, usage: usage}
}

// RequireAccessToken authenticates a bearer access token. The principal
// is built entirely from the embedded claims; no store round-trip.
func (m *AuthMiddleware) RequireAccessToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := m.verifyBearer(c, TokenTypeAccess)
		if err != nil {
			return err
		}
		setPrincipal(c, &Principal{
			ID:       claims.Subject,
			Email:    claims.Email,
			Role:     claims.Role,
			Username: claims.Username,
			Name:     claims.Name,
		})
		return c.Next()
	}
}

// RequireRefreshToken authenticates a bearer refresh token. Refresh
// claims intentionally carry no profile data, so the principal resolves
// the subject id only; the refresh flow re-fetches the full account.
func (m *AuthMiddleware) RequireRefreshToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := m.verifyBearer(c, TokenTypeRefresh)
		if err != nil {
			return err
		}
		setPrincipal(c, &Principal{ID: claims.Subject})
		return c.Next()
	}
}

// RequireAPIKey authenticates the X-API-Key header by encrypting the
// presented key and looking it up by ciphertext equality.
func (m *AuthMiddleware) RequireAPIKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := m.authenticateAPIKey(c)
		if err != nil {
			return err
		}
		setPrincipal(c, principal)
		return c.Next()
	}
}

// RequireAnyCredential accepts either a bearer access token or an API
// key, in that order of preference.
func (m *AuthMiddleware) RequireAnyCredential() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != "" {
			claims, err := m.verifyBearer(c, TokenTypeAccess)
			if err != nil {
				return err
			}
			setPrincipal(c, &Principal{
				ID:       claims.Subject,
				Email:    claims.Email,
				Role:     claims.Role,
				Username: claims.Username,
				Name:     claims.Name,
			})
			return c.Next()
		}

		principal, err := m.authenticateAPIKey(c)
		if err != nil {
			return err
		}
		setPrincipal(c, principal)
		return c.Next()
	}
}

func (m *AuthMiddleware) authenticateAPIKey(c *fiber.Ctx) (*Principal, error) {
	presented := c.Get(apiKeyHeader)
	if presented == "" {
		return nil, apperrors.NewUnauthorized("missing api key")
	}

	user, err := m.users.GetByEncryptedAPIKey(c.Context(), m.crypto.Encrypt(presented))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidAPIKey()
		}
		return nil, apperrors.MapError(err)
	}

	principal := &Principal{
		ID:       user.ID,
		Email:    user.Email,
		Role:     user.Role,
		Username: user.Username,
		Name:     user.Name,
		PlanID:   user.PlanID,
	}
	if m.usage != nil {
		// Usage counters are advisory; their absence must not block auth.
		if snapshot, err := m.usage.Snapshot(c.Context(), user.ID); err == nil {
			principal.FeatureUsage = &snapshot
		}
	}
	return principal, nil
}

func (m *AuthMiddleware) verifyBearer(c *fiber.Ctx, expected TokenType) (*Claims, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return nil, apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.Verify(parts[1], expected)
	if err != nil {
		return nil, mapTokenError(err)
	}
	return claims, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return apperrors.NewTokenExpired()
	case errors.Is(err, ErrWrongTokenType):
		return apperrors.NewWrongTokenType()
	default:
		return apperrors.NewTokenInvalid()
	}
}

func setPrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
}

// PrincipalFromContext retrieves the authenticated identity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
