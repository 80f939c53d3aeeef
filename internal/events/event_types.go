package events

import (
	"time"

	"github.com/spec-kit/saas-backend/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated            EventType = "user_created"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordChanged        EventType = "password_changed"
	EventSubscriptionUpdated    EventType = "subscription_updated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	PlanID   string `json:"plan_id"`
}

// PasswordResetRequestedPayload payload. ResetToken is forwarded to the
// notification collaborator for delivery; it is never returned to the
// original caller.
type PasswordResetRequestedPayload struct {
	Email      string    `json:"email"`
	ResetToken string    `json:"reset_token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// PasswordChangedPayload payload.
type PasswordChangedPayload struct {
	Email string `json:"email"`
}

// SubscriptionUpdatedPayload payload.
type SubscriptionUpdatedPayload struct {
	ExternalID string                    `json:"external_id"`
	Status     domain.SubscriptionStatus `json:"status"`
	Active     bool                      `json:"active"`
}
