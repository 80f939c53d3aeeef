package dto

import (
	"time"

	"github.com/spec-kit/saas-backend/internal/domain"
)

// PlanResponse is the public view of a plan.
type PlanResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FromPlan maps a domain plan.
func FromPlan(plan *domain.Plan) PlanResponse {
	return PlanResponse{ID: plan.ID, Name: plan.Name}
}

// BillingWebhookEvent is the inbound shape of provider lifecycle events.
type BillingWebhookEvent struct {
	Type         string                     `json:"type"`
	CustomerID   string                     `json:"customer_id"`
	Subscription BillingWebhookSubscription `json:"subscription"`
}

// BillingWebhookSubscription carries the provider's subscription state.
type BillingWebhookSubscription struct {
	ID                 string     `json:"id"`
	ItemID             string     `json:"item_id"`
	Status             string     `json:"status"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  *bool      `json:"cancel_at_period_end,omitempty"`
	CanceledAt         *time.Time `json:"canceled_at,omitempty"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
}

// ChatMessageRequest payload for the metered chat endpoint.
type ChatMessageRequest struct {
	Message string `json:"message"`
}
