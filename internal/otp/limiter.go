package otp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// SendLimiter throttles outbound passcode sends per identity using a fixed
// Redis window. The first send in a window sets the expiry; once the counter
// passes the limit, further sends are refused until the window lapses.
type SendLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewSendLimiter constructs a limiter. A nil client disables limiting.
func NewSendLimiter(client *redis.Client, limit int, window time.Duration) *SendLimiter {
	return &SendLimiter{client: client, limit: limit, window: window}
}

// Allow reports whether another send is permitted for identity right now.
func (l *SendLimiter) Allow(ctx context.Context, identity string) (bool, error) {
	if l == nil || l.client == nil || l.limit <= 0 {
		return true, nil
	}

	key := l.key(identity)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.limit), nil
}

func (l *SendLimiter) key(identity string) string {
	return fmt.Sprintf("otp:send:%s", strings.ToLower(strings.TrimSpace(identity)))
}
