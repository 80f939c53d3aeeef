package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/saas-backend/internal/domain"
	apperrors "github.com/spec-kit/saas-backend/pkg/util"
)

// usage keys roll over monthly; two months of retention is enough for
// end-of-period reconciliation.
const usageKeyTTL = 62 * 24 * time.Hour

// UsageService tracks metered feature counters in Redis. API-key
// principals carry a snapshot of these counters.
type UsageService struct {
	client *redis.Client
}

// NewUsageService builds the service.
func NewUsageService(client *redis.Client) *UsageService {
	return &UsageService{client: client}
}

// Snapshot reads the current month's counters for a user.
func (s *UsageService) Snapshot(ctx context.Context, userID string) (domain.FeatureUsage, error) {
	count, err := s.client.Get(ctx, chatMessagesKey(userID, time.Now())).Int64()
	if err != nil && err != redis.Nil {
		return domain.FeatureUsage{}, apperrors.MapError(err)
	}
	return domain.FeatureUsage{MonthlyAIChatMessages: count}, nil
}

// RecordChatMessage increments the monthly AI chat counter and returns
// the new total.
func (s *UsageService) RecordChatMessage(ctx context.Context, userID string) (int64, error) {
	key := chatMessagesKey(userID, time.Now())

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, usageKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, apperrors.MapError(err)
	}
	return incr.Val(), nil
}

func chatMessagesKey(userID string, now time.Time) string {
	return fmt.Sprintf("usage:%s:monthly_ai_chat_messages:%s", userID, now.Format("2006-01"))
}
