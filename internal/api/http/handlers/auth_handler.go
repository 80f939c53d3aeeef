package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/saas-backend/internal/api/dto"
	"github.com/spec-kit/saas-backend/internal/auth"
	"github.com/spec-kit/saas-backend/internal/service"
	apperrors "github.com/spec-kit/saas-backend/pkg/util"
)

// AuthHandler exposes the session flows.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// SignIn handles POST /auth/sign-in.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	result, err := h.auth.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(signInResponse(result))
}

// SignInWithProvider handles POST /auth/sign-in/provider.
func (h *AuthHandler) SignInWithProvider(c *fiber.Ctx) error {
	var req dto.ProviderSignInRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.ExternalID == "" {
		return fiber.NewError(http.StatusBadRequest, "external_id required")
	}

	result, err := h.auth.SignInWithProvider(c.Context(), req.ExternalID)
	if err != nil {
		return err
	}
	return c.JSON(signInResponse(result))
}

// SignUp handles POST /auth/sign-up.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Username == "" || req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name, username, email required")
	}
	if req.Password == nil || *req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "password required")
	}

	result, err := h.auth.SignUp(c.Context(), service.SignUpInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		PlanID:   req.PlanID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(signUpResponse(result))
}

// SignUpWithProvider handles POST /auth/sign-up/provider.
func (h *AuthHandler) SignUpWithProvider(c *fiber.Ctx) error {
	var req dto.ProviderSignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.ExternalID == "" || req.Email == "" || req.Username == "" || req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "external_id, name, username, email required")
	}

	result, err := h.auth.SignUp(c.Context(), service.SignUpInput{
		Name:       req.Name,
		Username:   req.Username,
		Email:      req.Email,
		ExternalID: &req.ExternalID,
		PlanID:     req.PlanID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(signUpResponse(result))
}

// Refresh handles POST /auth/refresh-token. The refresh-token strategy
// has already resolved the subject id.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("request without authorization token")
	}

	result, err := h.auth.Refresh(c.Context(), principal.ID)
	if err != nil {
		return err
	}
	return c.JSON(signInResponse(result))
}

// ForgotPassword handles POST /auth/forgot-password. The response is the
// same whether or not the email is on file.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email required")
	}

	if err := h.auth.ForgotPassword(c.Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"message": "if the account exists, a reset link has been sent"},
	})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Token == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "token and new_password required")
	}

	if err := h.auth.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"message": "password updated"},
	})
}

// Me handles GET /auth/me, echoing the access-token principal.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("request without authorization token")
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"id":       principal.ID,
			"email":    principal.Email,
			"role":     principal.Role,
			"username": principal.Username,
			"name":     principal.Name,
		},
	})
}

func signInResponse(result *service.SignInResult) fiber.Map {
	return fiber.Map{
		"data": fiber.Map{
			"user": dto.FromUser(result.User),
			"auth": dto.TokenPairResponse{
				AccessToken:      result.Tokens.AccessToken,
				AccessExpiresAt:  result.Tokens.AccessExpiresAt,
				RefreshToken:     result.Tokens.RefreshToken,
				RefreshExpiresAt: result.Tokens.RefreshExpiresAt,
			},
		},
	}
}

func signUpResponse(result *service.SignUpResult) fiber.Map {
	return fiber.Map{
		"data": fiber.Map{
			"user":    dto.FromUser(result.User),
			"api_key": result.APIKey,
			"auth": dto.TokenPairResponse{
				AccessToken:      result.Tokens.AccessToken,
				AccessExpiresAt:  result.Tokens.AccessExpiresAt,
				RefreshToken:     result.Tokens.RefreshToken,
				RefreshExpiresAt: result.Tokens.RefreshExpiresAt,
			},
		},
	}
}
