package domain

import "time"

// SubscriptionStatus mirrors the external billing provider's lifecycle.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPaused   SubscriptionStatus = "paused"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Subscription is the locally cached state of a user's billing
// subscription, kept in sync by the billing webhook.
type Subscription struct {
	ID                 string
	UserID             string
	ExternalID         string
	ItemID             string
	Status             SubscriptionStatus
	Active             bool
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool
	CanceledAt         *time.Time
	EndedAt            *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
