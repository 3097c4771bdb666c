package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner-backend/models"
	"tripplanner-backend/services"
)

func TestRedisSummaryCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := services.NewRedisSummaryCache(client, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	_, ok, err := cache.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	want := &models.NotificationSummary{PendingInvites: 2, Total: 3, Trips: []models.TripUnreadCounts{{TripID: uuid.New(), UnreadChat: 3, Total: 3}}}
	require.NoError(t, cache.Set(ctx, id, want))
	got, ok, err := cache.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, id, want))
	require.NoError(t, cache.Invalidate(ctx, id, uuid.New()))
	_, ok, err = cache.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}
