package dto

import "time"

// SignUpRequest payload for new accounts. Password is optional when the
// account is created through a third-party identity provider.
type SignUpRequest struct {
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password *string `json:"password,omitempty"`
	PlanID   string  `json:"plan_id,omitempty"`
}

// SignInRequest payload for password sign-in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProviderSignInRequest payload for third-party identity sign-in.
type ProviderSignInRequest struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
}

// ProviderSignUpRequest payload for third-party identity sign-up.
type ProviderSignUpRequest struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	PlanID     string `json:"plan_id,omitempty"`
}

// ForgotPasswordRequest payload for initiating recovery.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest payload for completing recovery.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// TokenPairResponse carries the issued token pair.
type TokenPairResponse struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}
