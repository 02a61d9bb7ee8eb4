// internal/gateway/local/rate_limiter.go
package local

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles password sign-in attempts per email.
type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckLoginAttempt counts one attempt; allows up to 5 per 15 minutes.
func (r *RateLimiter) CheckLoginAttempt(ctx context.Context, email string) (bool, error) {
	key := fmt.Sprintf("ratelimit:login:%s", email)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment login attempt: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		r.client.Expire(ctx, key, 15*time.Minute)
	}

	return count <= 5, nil
}

// ResetLoginAttempts clears the counter after a successful sign-in.
func (r *RateLimiter) ResetLoginAttempts(ctx context.Context, email string) error {
	key := fmt.Sprintf("ratelimit:login:%s", email)
	return r.client.Del(ctx, key).Err()
}
