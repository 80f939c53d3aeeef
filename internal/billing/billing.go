// Package billing defines the contract with the external billing
// processor. Sign-up provisions a customer and subscription through it;
// later lifecycle changes arrive via webhook and are reconciled by the
// subscription service.
package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/saas-backend/internal/domain"
)

// Account bundles the provisioned customer and subscription references.
type Account struct {
	CustomerID         string
	SubscriptionID     string
	SubscriptionItemID string
	Status             domain.SubscriptionStatus
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
}

// Provider provisions billing state with the external processor.
type Provider interface {
	Provision(ctx context.Context, email, name, externalPriceID string) (*Account, error)
}

// localProvider fabricates billing state for deployments without a
// payment processor wired in.
type localProvider struct{}

// NewLocalProvider returns the in-process provider.
func NewLocalProvider() Provider {
	return &localProvider{}
}

func (p *localProvider) Provision(_ context.Context, _, _, _ string) (*Account, error) {
	now := time.Now()
	periodEnd := now.AddDate(0, 1, 0)
	return &Account{
		CustomerID:         "cus_" + uuid.NewString(),
		SubscriptionID:     "sub_" + uuid.NewString(),
		SubscriptionItemID: "si_" + uuid.NewString(),
		Status:             domain.SubscriptionStatusActive,
		CurrentPeriodStart: &now,
		CurrentPeriodEnd:   &periodEnd,
	}, nil
}
