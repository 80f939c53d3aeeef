package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/saas-backend/internal/config"
	"github.com/spec-kit/saas-backend/internal/domain"
)

// TokenType discriminates the purpose a token was minted for. Every
// verification names the type it expects; a token of a different type is
// rejected even when its signature and expiry are valid.
type TokenType string

const (
	TokenTypeAccess         TokenType = "access"
	TokenTypeRefresh        TokenType = "refresh"
	TokenTypeForgotPassword TokenType = "forgot_password"
)

var (
	// ErrInvalidToken reports a signature or structure failure.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired reports a token past its ttl.
	ErrTokenExpired = errors.New("token expired")
	// ErrWrongTokenType reports a valid token presented for the wrong purpose.
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims is the signed JWT payload. Profile fields are populated only on
// access tokens so authorized requests need no store lookup; refresh and
// forgot-password tokens carry the subject id alone.
type Claims struct {
	TokenType TokenType       `json:"type"`
	Email     string          `json:"email,omitempty"`
	Role      domain.UserRole `json:"role,omitempty"`
	Username  string          `json:"username,omitempty"`
	Name      string          `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the three token classes with per-type
// lifetimes. It is stateless: verification is signature plus expiry plus
// type, with no server-side token store.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	forgotTTL  time.Duration
}

// NewTokenManager builds a manager from auth configuration.
func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL(),
		refreshTTL: cfg.RefreshTokenTTL(),
		forgotTTL:  cfg.ForgotPasswordTTL(),
	}
}

// IssueAccessToken signs a short-lived token embedding the user's profile.
func (tm *TokenManager) IssueAccessToken(user *domain.User) (string, time.Time, error) {
	return tm.issue(&Claims{
		TokenType: TokenTypeAccess,
		Email:     user.Email,
		Role:      user.Role,
		Username:  user.Username,
		Name:      user.Name,
	}, user.ID, tm.accessTTL)
}

// IssueRefreshToken signs a long-lived token carrying only the subject id.
func (tm *TokenManager) IssueRefreshToken(userID string) (string, time.Time, error) {
	return tm.issue(&Claims{TokenType: TokenTypeRefresh}, userID, tm.refreshTTL)
}

// IssueForgotPasswordToken signs a short-lived single-purpose reset token.
func (tm *TokenManager) IssueForgotPasswordToken(userID string) (string, time.Time, error) {
	return tm.issue(&Claims{TokenType: TokenTypeForgotPassword}, userID, tm.forgotTTL)
}

func (tm *TokenManager) issue(claims *Claims, subjectID string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subjectID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify checks signature, expiry and type, in that order. Expiry wins
// over type so an expired token always reports ErrTokenExpired.
func (tm *TokenManager) Verify(tokenStr string, expected TokenType) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expected {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
