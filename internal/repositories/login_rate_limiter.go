package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type LoginRateLimiter interface {
	CheckLoginRateLimit(ctx context.Context, email string) (bool, int, int, error)
}

type redisLoginRateLimiter struct {
	client *redis.Client
	cfg    *config.RateConfig
	now    func() time.Time
	member func(at time.Time) string
}

func NewLoginRateLimiter(client *redis.Client, cfg *config.RateConfig) LoginRateLimiter {
	return &redisLoginRateLimiter{client: client, cfg: cfg, now: time.Now, member: attemptMember}
}

// attemptMember names one attempt in the sorted set. Members must be unique
// or attempts made in the same instant collapse into one.
func attemptMember(at time.Time) string {
	return fmt.Sprintf("%d-%s", at.UnixNano(), uuid.NewString())
}

// Returns isAllowed, attempts left, seconds to wait, error
func (r *redisLoginRateLimiter) CheckLoginRateLimit(ctx context.Context, email string) (bool, int, int, error) {

	logger := middleware.LoggerFromContext(ctx)

	key := fmt.Sprintf("login_attempts:%s", email)

	at := r.now()
	now := at.Unix()
	window := int64(r.cfg.WindowSize.Seconds())

	// only attempts after windowStart are counted
	windowStart := now - window

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: r.member(at)})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, r.cfg.WindowSize)

	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("Redis pipeline execution failed for rate limit", slog.String("key", key), slog.Any("error", err))
		return false, 0, 0, fmt.Errorf("redis pipeline error for rate limit check: %w", err)
	}

	attempts := count.Val()
	remaining := r.cfg.MaxAttempts - attempts

	if attempts > r.cfg.MaxAttempts {

		scores, err := r.client.ZRangeArgsWithScores(ctx, redis.ZRangeArgs{
			Key: key, Start: 0, Stop: 0,
		}).Result()
		if err != nil || len(scores) == 0 {
			logger.Error("Failed to get oldest attempt time for rate limit", slog.String("key", key), slog.Any("error", err))
			return false, 0, int(window), fmt.Errorf("failed to get oldest attempt time: %w", err)
		}

		retryAfter := max(int64(scores[0].Score)+window-now, 0)

		logger.Warn("Login rate limit exceeded", slog.Int64("attempts", attempts))
		return false, 0, int(retryAfter), nil
	}

	return true, int(remaining), 0, nil
}
