package domain

import "time"

// UserRole enumerates access levels for tenant accounts.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// FeatureUsage is a point-in-time snapshot of metered feature counters.
type FeatureUsage struct {
	MonthlyAIChatMessages int64 `json:"monthly_ai_chat_messages"`
}

// User is the persisted account record. PasswordHash is nil for accounts
// created through a third-party identity provider; EncryptedAPIKey holds
// the reversibly encrypted form of the single active API key.
type User struct {
	ID                string
	Name              string
	Username          string
	Email             string
	Role              UserRole
	PasswordHash      *string
	EncryptedAPIKey   string
	ExternalID        *string
	BillingCustomerID string
	PlanID            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
