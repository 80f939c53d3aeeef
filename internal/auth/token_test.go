package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/saas-backend/internal/config"
	"github.com/spec-kit/saas-backend/internal/domain"
)

func newTestManager() *TokenManager {
	return NewTokenManager(config.AuthConfig{
		JWTSecret:                "test-secret",
		AccessTokenTTLMinutes:    15,
		RefreshTokenTTLMinutes:   60,
		ForgotPasswordTTLMinutes: 30,
	})
}

func testUser() *domain.User {
	return &domain.User{
		ID:       "user-1",
		Name:     "Alice Doe",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     domain.RoleUser,
	}
}

func TestIssueAccessToken_EmbedsProfile(t *testing.T) {
	t.Parallel()
	tm := newTestManager()

	tok, _, err := tm.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	claims, err := tm.Verify(tok, TokenTypeAccess)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "alice@example.com" ||
		claims.Username != "alice" || claims.Name != "Alice Doe" || claims.Role != domain.RoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestIssueRefreshToken_CarriesSubjectOnly(t *testing.T) {
	t.Parallel()
	tm := newTestManager()

	tok, _, err := tm.IssueRefreshToken("user-2")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	claims, err := tm.Verify(tok, TokenTypeRefresh)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Subject != "user-2" {
		t.Fatalf("subject mismatch: got %q", claims.Subject)
	}
	if claims.Email != "" || claims.Role != "" || claims.Username != "" {
		t.Fatalf("refresh claims must not carry profile data: %+v", claims)
	}
}

func TestVerify_WrongTokenType(t *testing.T) {
	t.Parallel()
	tm := newTestManager()

	access, _, err := tm.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	refresh, _, err := tm.IssueRefreshToken("user-1")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	forgot, _, err := tm.IssueForgotPasswordToken("user-1")
	if err != nil {
		t.Fatalf("IssueForgotPasswordToken error: %v", err)
	}

	cases := []struct {
		token    string
		expected TokenType
	}{
		{access, TokenTypeRefresh},
		{access, TokenTypeForgotPassword},
		{refresh, TokenTypeAccess},
		{forgot, TokenTypeAccess},
		{forgot, TokenTypeRefresh},
	}
	for _, tc := range cases {
		if _, err := tm.Verify(tc.token, tc.expected); !errors.Is(err, ErrWrongTokenType) {
			t.Errorf("Verify(expected=%s) = %v, want ErrWrongTokenType", tc.expected, err)
		}
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager(config.AuthConfig{
		JWTSecret:              "test-secret",
		AccessTokenTTLMinutes:  -1,
		RefreshTokenTTLMinutes: -1,
	})

	tok, _, err := tm.IssueRefreshToken("user-3")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	// Expiry must win even when the type would also be wrong.
	if _, err := tm.Verify(tok, TokenTypeRefresh); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expired refresh: got %v, want ErrTokenExpired", err)
	}
	if _, err := tm.Verify(tok, TokenTypeAccess); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expired refresh as access: got %v, want ErrTokenExpired", err)
	}
}

func TestVerify_InvalidSignature(t *testing.T) {
	t.Parallel()

	tm := newTestManager()
	other := NewTokenManager(config.AuthConfig{
		JWTSecret:             "another-secret",
		AccessTokenTTLMinutes: 15,
	})

	tok, _, err := other.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	if _, err := tm.Verify(tok, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign signature: got %v, want ErrInvalidToken", err)
	}
	if _, err := tm.Verify("not.a.jwt", TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("malformed token: got %v, want ErrInvalidToken", err)
	}
}

func TestTokenLifetimes(t *testing.T) {
	t.Parallel()
	tm := newTestManager()

	_, accessExp, err := tm.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	_, refreshExp, err := tm.IssueRefreshToken("user-1")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	if !refreshExp.After(accessExp) {
		t.Fatalf("refresh expiry %v not after access expiry %v", refreshExp, accessExp)
	}
	if accessExp.Before(time.Now()) {
		t.Fatalf("access expiry %v already in the past", accessExp)
	}
}
