package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/saas-backend/internal/api/dto"
	"github.com/spec-kit/saas-backend/internal/auth"
	"github.com/spec-kit/saas-backend/internal/service"
	apperrors "github.com/spec-kit/saas-backend/pkg/util"
)

// ChatHandler is the metered AI chat endpoint. It exists to exercise the
// per-account usage counters that API-key principals carry.
type ChatHandler struct {
	usage *service.UsageService
}

// NewChatHandler constructs handler.
func NewChatHandler(usage *service.UsageService) *ChatHandler {
	return &ChatHandler{usage: usage}
}

// CreateMessage handles POST /chat/messages.
func (h *ChatHandler) CreateMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("request without authorization token")
	}

	var req dto.ChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Message == "" {
		return fiber.NewError(http.StatusBadRequest, "message required")
	}

	count, err := h.usage.RecordChatMessage(c.Context(), principal.ID)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"reply": "echo: " + req.Message,
			"usage": fiber.Map{"monthly_ai_chat_messages": count},
		},
	})
}
