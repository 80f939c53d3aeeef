package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/saas-backend/internal/auth"
	"github.com/spec-kit/saas-backend/internal/billing"
	"github.com/spec-kit/saas-backend/internal/config"
	"github.com/spec-kit/saas-backend/internal/crypto"
	"github.com/spec-kit/saas-backend/internal/domain"
	"github.com/spec-kit/saas-backend/internal/events"
	"github.com/spec-kit/saas-backend/internal/repository"
	apperrors "github.com/spec-kit/saas-backend/pkg/util"
)

// TokenPair bundles a short-lived access token and a long-lived refresh
// token, both minted together.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// SignInResult carries the resolved account and its freshly issued tokens.
type SignInResult struct {
	User   *domain.User
	Tokens TokenPair
}

// SignUpInput are the fields required to provision an account. Password
// is optional: accounts created through a third-party identity provider
// have none.
type SignUpInput struct {
	Name       string
	Username   string
	Email      string
	Password   *string
	ExternalID *string
	PlanID     string
}

// SignUpResult includes the one-time plaintext API key. It is never
// retrievable again; only its encrypted form is stored.
type SignUpResult struct {
	User   *domain.User
	APIKey string
	Tokens TokenPair
}

// AuthService orchestrates the sign-in, sign-up, refresh and password
// recovery flows.
type AuthService struct {
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	plans         repository.PlanRepository
	tokens        *auth.TokenManager
	crypto        *crypto.Service
	billing       billing.Provider
	dispatcher    events.Dispatcher
	defaultPlanID string
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	UserRepo         repository.UserRepository
	SubscriptionRepo repository.SubscriptionRepository
	PlanRepo         repository.PlanRepository
	Tokens           *auth.TokenManager
	Crypto           *crypto.Service
	Billing          billing.Provider
	Dispatcher       events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:         deps.UserRepo,
		subscriptions: deps.SubscriptionRepo,
		plans:         deps.PlanRepo,
		tokens:        deps.Tokens,
		crypto:        deps.Crypto,
		billing:       deps.Billing,
		dispatcher:    deps.Dispatcher,
		defaultPlanID: cfg.Billing.DefaultPlanID,
	}
}

// SignIn authenticates an email/password pair. Unknown email and wrong
// password surface as the same error.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.MapError(err)
	}
	if user.PasswordHash == nil || !s.crypto.ComparePasswords(password, *user.PasswordHash) {
		return nil, apperrors.NewInvalidCredentials()
	}

	tokens, err := s.issueTokenPair(user)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &SignInResult{User: user, Tokens: tokens}, nil
}

// SignInWithProvider authenticates by third-party identity id. An unknown
// external id is a hard failure; provisioning stays an explicit sign-up.
func (s *AuthService) SignInWithProvider(ctx context.Context, externalID string) (*SignInResult, error) {
	user, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotRegistered()
		}
		return nil, apperrors.MapError(err)
	}

	tokens, err := s.issueTokenPair(user)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &SignInResult{User: user, Tokens: tokens}, nil
}

// SignUp provisions a new account: uniqueness checks, billing
// provisioning, API key generation, optional password hashing,
// persistence, and best-effort welcome notifications.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*SignUpResult, error) {
	if existing, err := s.users.GetByEmailOrUsername(ctx, input.Email, input.Username); err == nil {
		field := "username"
		if existing.Email == input.Email {
			field = "email"
		}
		return nil, apperrors.NewConflict("user already exists", map[string]any{"field": field})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	planID := input.PlanID
	if planID == "" {
		planID = s.defaultPlanID
	}
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown plan", map[string]any{"plan_id": planID})
		}
		return nil, apperrors.MapError(err)
	}

	account, err := s.billing.Provision(ctx, input.Email, input.Name, plan.ExternalPriceID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	apiKey, err := auth.GenerateAPIKey()
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var passwordHash *string
	if input.Password != nil {
		hash, err := s.crypto.HashPassword(*input.Password)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		passwordHash = &hash
	}

	user := &domain.User{
		Name:              input.Name,
		Username:          input.Username,
		Email:             input.Email,
		Role:              domain.RoleUser,
		PasswordHash:      passwordHash,
		EncryptedAPIKey:   s.crypto.Encrypt(apiKey),
		ExternalID:        input.ExternalID,
		BillingCustomerID: account.CustomerID,
		PlanID:            plan.ID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	sub := &domain.Subscription{
		UserID:             user.ID,
		ExternalID:         account.SubscriptionID,
		ItemID:             account.SubscriptionItemID,
		Status:             account.Status,
		Active:             account.Status == domain.SubscriptionStatusActive,
		CurrentPeriodStart: account.CurrentPeriodStart,
		CurrentPeriodEnd:   account.CurrentPeriodEnd,
	}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishAsync(events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserCreated,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload: events.UserCreatedPayload{
			Email:    user.Email,
			Username: user.Username,
			Name:     user.Name,
			PlanID:   user.PlanID,
		},
	})

	tokens, err := s.issueTokenPair(user)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &SignUpResult{User: user, APIKey: apiKey, Tokens: tokens}, nil
}

// Refresh re-fetches the account named by a verified refresh token and
// issues a new token pair bound to its current role and email. Both
// tokens rotate.
func (s *AuthService) Refresh(ctx context.Context, userID string) (*SignInResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("account no longer exists")
		}
		return nil, apperrors.MapError(err)
	}

	tokens, err := s.issueTokenPair(user)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &SignInResult{User: user, Tokens: tokens}, nil
}

// ForgotPassword issues a reset token and hands it to the notification
// collaborator. An unknown email reports success all the same so account
// existence is not revealed.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}

	token, expiresAt, err := s.tokens.IssueForgotPasswordToken(user.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	s.publishAsync(events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPasswordResetRequested,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload: events.PasswordResetRequestedPayload{
			Email:      user.Email,
			ResetToken: token,
			ExpiresAt:  expiresAt,
		},
	})
	return nil
}

// ResetPassword verifies a forgot-password token and stores the new hash.
// Outstanding access/refresh tokens stay valid until expiry; there is no
// revocation list.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.Verify(token, auth.TokenTypeForgotPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			return apperrors.NewTokenExpired()
		case errors.Is(err, auth.ErrWrongTokenType):
			return apperrors.NewWrongTokenType()
		default:
			return apperrors.NewTokenInvalid()
		}
	}

	hash, err := s.crypto.HashPassword(newPassword)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.users.UpdatePassword(ctx, claims.Subject, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err == nil {
		s.publishAsync(events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventPasswordChanged,
			UserID:    user.ID,
			Timestamp: time.Now(),
			Payload:   events.PasswordChangedPayload{Email: user.Email},
		})
	}
	return nil
}

func (s *AuthService) issueTokenPair(user *domain.User) (TokenPair, error) {
	access, accessExp, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// publishAsync detaches notification fan-out from the request: handler
// failures or slowness must never fail or delay the calling flow.
func (s *AuthService) publishAsync(event events.Event) {
	if s.dispatcher == nil {
		return
	}
	go s.dispatcher.Publish(context.Background(), event)
}
