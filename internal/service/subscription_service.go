package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/saas-backend/internal/domain"
	"github.com/spec-kit/saas-backend/internal/events"
	"github.com/spec-kit/saas-backend/internal/repository"
	apperrors "github.com/spec-kit/saas-backend/pkg/util"
)

// SubscriptionUpdate carries the fields a billing webhook may change.
type SubscriptionUpdate struct {
	ExternalID         string
	ItemID             *string
	Status             domain.SubscriptionStatus
	Active             bool
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  *bool
	CanceledAt         *time.Time
	EndedAt            *time.Time
}

// SubscriptionService reconciles webhook-driven billing state into the
// local subscription cache.
type SubscriptionService struct {
	subscriptions repository.SubscriptionRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
}

// NewSubscriptionService builds the service.
func NewSubscriptionService(subscriptions repository.SubscriptionRepository, users repository.UserRepository, dispatcher events.Dispatcher) *SubscriptionService {
	return &SubscriptionService{subscriptions: subscriptions, users: users, dispatcher: dispatcher}
}

// SyncByCustomerID applies a billing lifecycle change reported for the
// given external customer.
func (s *SubscriptionService) SyncByCustomerID(ctx context.Context, customerID string, update SubscriptionUpdate) (*domain.Subscription, error) {
	user, err := s.findUserByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.UpdateByUserID(ctx, user.ID, update)
}

// UpdateByUserID applies a billing lifecycle change for a known user.
func (s *SubscriptionService) UpdateByUserID(ctx context.Context, userID string, update SubscriptionUpdate) (*domain.Subscription, error) {
	sub, err := s.subscriptions.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("subscription", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	sub.ExternalID = update.ExternalID
	sub.Status = update.Status
	sub.Active = update.Active
	if update.ItemID != nil {
		sub.ItemID = *update.ItemID
	}
	if update.CurrentPeriodStart != nil {
		sub.CurrentPeriodStart = update.CurrentPeriodStart
	}
	if update.CurrentPeriodEnd != nil {
		sub.CurrentPeriodEnd = update.CurrentPeriodEnd
	}
	if update.CancelAtPeriodEnd != nil {
		sub.CancelAtPeriodEnd = *update.CancelAtPeriodEnd
	}
	if update.CanceledAt != nil {
		sub.CanceledAt = update.CanceledAt
	}
	if update.EndedAt != nil {
		sub.EndedAt = update.EndedAt
	}

	if err := s.subscriptions.Update(ctx, sub); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		go s.dispatcher.Publish(context.Background(), events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventSubscriptionUpdated,
			UserID:    userID,
			Timestamp: time.Now(),
			Payload: events.SubscriptionUpdatedPayload{
				ExternalID: sub.ExternalID,
				Status:     sub.Status,
				Active:     sub.Active,
			},
		})
	}
	return sub, nil
}

func (s *SubscriptionService) findUserByCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	user, err := s.users.GetByBillingCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"customer_id": customerID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
