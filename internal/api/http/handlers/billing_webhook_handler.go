package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/saas-backend/internal/api/dto"
	"github.com/spec-kit/saas-backend/internal/domain"
	"github.com/spec-kit/saas-backend/internal/service"
)

// BillingWebhookHandler reconciles provider subscription lifecycle
// events into the local subscription cache.
type BillingWebhookHandler struct {
	subscriptions *service.SubscriptionService
}

// NewBillingWebhookHandler constructs handler.
func NewBillingWebhookHandler(subscriptions *service.SubscriptionService) *BillingWebhookHandler {
	return &BillingWebhookHandler{subscriptions: subscriptions}
}

// Handle processes POST /webhooks/billing.
func (h *BillingWebhookHandler) Handle(c *fiber.Ctx) error {
	var event dto.BillingWebhookEvent
	if err := c.BodyParser(&event); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if event.CustomerID == "" || event.Subscription.ID == "" {
		return fiber.NewError(http.StatusBadRequest, "customer_id and subscription.id required")
	}

	update := service.SubscriptionUpdate{
		ExternalID:         event.Subscription.ID,
		Status:             domain.SubscriptionStatus(event.Subscription.Status),
		Active:             eventImpliesActive(event.Type, event.Subscription.Status),
		CurrentPeriodStart: event.Subscription.CurrentPeriodStart,
		CurrentPeriodEnd:   event.Subscription.CurrentPeriodEnd,
		CancelAtPeriodEnd:  event.Subscription.CancelAtPeriodEnd,
		CanceledAt:         event.Subscription.CanceledAt,
		EndedAt:            event.Subscription.EndedAt,
	}
	if event.Subscription.ItemID != "" {
		update.ItemID = &event.Subscription.ItemID
	}

	if _, err := h.subscriptions.SyncByCustomerID(c.Context(), event.CustomerID, update); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"received": true}})
}

func eventImpliesActive(eventType, status string) bool {
	switch eventType {
	case "customer.subscription.paused":
		return false
	default:
		return status == string(domain.SubscriptionStatusActive)
	}
}
