package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tripplanner-backend/utils"
)

const rateLimitWindow = time.Minute

// RateLimiter is a fixed one-minute window counter kept in redis. Anonymous
// callers are keyed by IP and authenticated callers by user id.
type RateLimiter struct {
	client *redis.Client
	anon   int
	user   int
	now    func() time.Time
}

func NewRateLimiter(client *redis.Client, anonPerMinute, userPerMinute int) *RateLimiter {
	return &RateLimiter{client: client, anon: anonPerMinute, user: userPerMinute, now: time.Now}
}

// Handler returns the gin middleware. With no redis client every request
// passes.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.client == nil {
			c.Next()
			return
		}

		scope, limit := "ip:"+c.ClientIP(), rl.anon
		if id := utils.GetCurrentUserID(c); id != uuid.Nil {
			scope, limit = "user:"+id.String(), rl.user
		}
		if limit <= 0 {
			c.Next()
			return
		}

		now := rl.now()
		window := now.Truncate(rateLimitWindow)
		key := fmt.Sprintf("tripplanner:ratelimit:%s:%d", scope, window.Unix())

		ctx := c.Request.Context()
		pipe := rl.client.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, rateLimitWindow)
		if _, err := pipe.Exec(ctx); err != nil {
			slog.Warn("⚠️  Rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		if incr.Val() > int64(limit) {
			retry := int(window.Add(rateLimitWindow).Sub(now).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.APIResponse{
				Success: false,
				Message: fmt.Sprintf("Request was throttled. Expected available in %d seconds.", retry),
			})
			return
		}
		c.Next()
	}
}
