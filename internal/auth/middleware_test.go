package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/saas-backend/internal/config"
	"github.com/spec-kit/saas-backend/internal/crypto"
	"github.com/spec-kit/saas-backend/internal/domain"
	apperrors "github.com/spec-kit/saas-backend/pkg/util"
)

type fakeUserStore struct {
	byAPIKey map[string]*domain.User
	lookups  int
}

func (f *fakeUserStore) Create(context.Context, *domain.User) error            { return nil }
func (f *fakeUserStore) Update(context.Context, *domain.User) error            { return nil }
func (f *fakeUserStore) UpdatePassword(context.Context, string, string) error  { return nil }
func (f *fakeUserStore) Delete(context.Context, string) error                  { return nil }
func (f *fakeUserStore) GetByID(context.Context, string) (*domain.User, error) { return nil, pgx.ErrNoRows }
func (f *fakeUserStore) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeUserStore) GetByExternalID(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeUserStore) GetByBillingCustomerID(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeUserStore) GetByEmailOrUsername(context.Context, string, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeUserStore) List(context.Context, int, int) ([]*domain.User, error) { return nil, nil }

func (f *fakeUserStore) GetByEncryptedAPIKey(_ context.Context, encrypted string) (*domain.User, error) {
	f.lookups++
	if user, ok := f.byAPIKey[encrypted]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeUsage struct {
	counts map[string]int64
}

func (f *fakeUsage) Snapshot(_ context.Context, userID string) (domain.FeatureUsage, error) {
	return domain.FeatureUsage{MonthlyAIChatMessages: f.counts[userID]}, nil
}

func newMiddlewareFixture(t *testing.T) (*AuthMiddleware, *TokenManager, *crypto.Service, *fakeUserStore) {
	t.Helper()

	cryptoSvc, err := crypto.New(config.CryptoConfig{
		Algorithm:  crypto.AlgorithmAES256CBC,
		KeyHex:     "305b4d83eae2e3e00484336539a8ecd29c841a86f1087e5768cf4f09344266f6",
		IVHex:      "18859ed3ccba5ece96c6f7fb3edf3b94",
		BcryptCost: 4,
	})
	if err != nil {
		t.Fatalf("crypto.New error: %v", err)
	}

	tokens := NewTokenManager(config.AuthConfig{
		JWTSecret:                "test-secret",
		AccessTokenTTLMinutes:    15,
		RefreshTokenTTLMinutes:   60,
		ForgotPasswordTTLMinutes: 30,
	})

	store := &fakeUserStore{byAPIKey: map[string]*domain.User{}}
	usage := &fakeUsage{counts: map[string]int64{"user-1": 7}}
	return NewAuthMiddleware(tokens, store, cryptoSvc, usage), tokens, cryptoSvc, store
}

func newStrategyApp(mw *AuthMiddleware) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
		},
	})

	echoPrincipal := func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.JSON(principal)
	}
	app.Get("/access", mw.RequireAccessToken(), echoPrincipal)
	app.Get("/refresh", mw.RequireRefreshToken(), echoPrincipal)
	app.Get("/apikey", mw.RequireAPIKey(), echoPrincipal)
	app.Get("/any", mw.RequireAnyCredential(), echoPrincipal)
	return app
}

func doStrategyRequest(t *testing.T, app *fiber.App, path string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestAccessTokenStrategy_PrincipalFromClaimsOnly(t *testing.T) {
	t.Parallel()
	mw, tokens, _, store := newMiddlewareFixture(t)
	app := newStrategyApp(mw)

	tok, _, err := tokens.IssueAccessToken(&domain.User{
		ID: "user-1", Email: "a@x.com", Username: "alice", Name: "Alice", Role: domain.RoleUser,
	})
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	status, body := doStrategyRequest(t, app, "/access", map[string]string{"Authorization": "Bearer " + tok})
	if status != http.StatusOK {
		t.Fatalf("access request: got %d, want 200", status)
	}
	if body["ID"] != "user-1" || body["Email"] != "a@x.com" {
		t.Fatalf("unexpected principal: %v", body)
	}
	if store.lookups != 0 {
		t.Fatalf("access strategy must not hit the store, got %d lookups", store.lookups)
	}
}

func TestRefreshRouteRejectsAccessToken(t *testing.T) {
	t.Parallel()
	mw, tokens, _, _ := newMiddlewareFixture(t)
	app := newStrategyApp(mw)

	access, _, err := tokens.IssueAccessToken(&domain.User{ID: "user-1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	status, body := doStrategyRequest(t, app, "/refresh", map[string]string{"Authorization": "Bearer " + access})
	if status != http.StatusUnauthorized || body["code"] != "WRONG_TOKEN_TYPE" {
		t.Fatalf("access token on refresh route: got %d %v", status, body)
	}

	// And the reverse direction.
	refresh, _, err := tokens.IssueRefreshToken("user-1")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	status, body = doStrategyRequest(t, app, "/access", map[string]string{"Authorization": "Bearer " + refresh})
	if status != http.StatusUnauthorized || body["code"] != "WRONG_TOKEN_TYPE" {
		t.Fatalf("refresh token on access route: got %d %v", status, body)
	}
}

func TestRefreshRouteRejectsExpiredToken(t *testing.T) {
	t.Parallel()
	mw, _, _, _ := newMiddlewareFixture(t)
	app := newStrategyApp(mw)

	expired := NewTokenManager(config.AuthConfig{
		JWTSecret:              "test-secret",
		RefreshTokenTTLMinutes: -1,
	})
	tok, _, err := expired.IssueRefreshToken("user-1")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	status, body := doStrategyRequest(t, app, "/refresh", map[string]string{"Authorization": "Bearer " + tok})
	if status != http.StatusUnauthorized || body["code"] != "TOKEN_EXPIRED" {
		t.Fatalf("expired refresh token: got %d %v", status, body)
	}
}

func TestAPIKeyStrategy(t *testing.T) {
	t.Parallel()
	mw, _, cryptoSvc, store := newMiddlewareFixture(t)
	app := newStrategyApp(mw)

	plaintext := "dev_testkey"
	store.byAPIKey[cryptoSvc.Encrypt(plaintext)] = &domain.User{
		ID: "user-1", Email: "a@x.com", Role: domain.RoleUser, PlanID: "plan-free",
	}

	status, body := doStrategyRequest(t, app, "/apikey", map[string]string{"X-API-Key": plaintext})
	if status != http.StatusOK {
		t.Fatalf("valid api key: got %d", status)
	}
	if body["PlanID"] != "plan-free" {
		t.Fatalf("api key principal missing plan snapshot: %v", body)
	}
	usage, ok := body["FeatureUsage"].(map[string]any)
	if !ok || usage["monthly_ai_chat_messages"] != float64(7) {
		t.Fatalf("api key principal missing usage snapshot: %v", body)
	}

	status, body = doStrategyRequest(t, app, "/apikey", map[string]string{"X-API-Key": "dev_wrong"})
	if status != http.StatusUnauthorized || body["code"] != "INVALID_API_KEY" {
		t.Fatalf("invalid api key: got %d %v", status, body)
	}
}

func TestAnyCredentialStrategy(t *testing.T) {
	t.Parallel()
	mw, tokens, cryptoSvc, store := newMiddlewareFixture(t)
	app := newStrategyApp(mw)

	plaintext := "dev_eitherkey"
	store.byAPIKey[cryptoSvc.Encrypt(plaintext)] = &domain.User{ID: "user-2", Role: domain.RoleUser}

	tok, _, err := tokens.IssueAccessToken(&domain.User{ID: "user-3", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	if status, body := doStrategyRequest(t, app, "/any", map[string]string{"Authorization": "Bearer " + tok}); status != http.StatusOK || body["ID"] != "user-3" {
		t.Fatalf("bearer via any: got %d %v", status, body)
	}
	if status, body := doStrategyRequest(t, app, "/any", map[string]string{"X-API-Key": plaintext}); status != http.StatusOK || body["ID"] != "user-2" {
		t.Fatalf("api key via any: got %d %v", status, body)
	}
	if status, _ := doStrategyRequest(t, app, "/any", nil); status != http.StatusUnauthorized {
		t.Fatalf("no credentials via any: got %d", status)
	}
}
