package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tripplanner-backend/models"
)

// SummaryCache stores computed notification summaries per account.
type SummaryCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.NotificationSummary, bool, error)
	Set(ctx context.Context, userID uuid.UUID, summary *models.NotificationSummary) error
	Invalidate(ctx context.Context, userIDs ...uuid.UUID) error
}

const summaryKeyPrefix = "tripplanner:notif-summary:"

type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{client: client, ttl: ttl}
}

func summaryKey(userID uuid.UUID) string {
	return summaryKeyPrefix + userID.String()
}

func (c *RedisSummaryCache) Get(ctx context.Context, userID uuid.UUID) (*models.NotificationSummary, bool, error) {
	raw, err := c.client.Get(ctx, summaryKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get summary: %w", err)
	}
	var summary models.NotificationSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false, fmt.Errorf("decode cached summary: %w", err)
	}
	return &summary, true, nil
}

func (c *RedisSummaryCache) Set(ctx context.Context, userID uuid.UUID, summary *models.NotificationSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return c.client.Set(ctx, summaryKey(userID), raw, c.ttl).Err()
}

func (c *RedisSummaryCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = summaryKey(id)
	}
	return c.client.Del(ctx, keys...).Err()
}
