package outbound

import (
	"context"
	"time"
)

// RateLimitService counts failed attempts per key and blocks keys that
// exceed their budget. Implemented by infrastructure/service/ratelimit.
type RateLimitService interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Increment(ctx context.Context, key string, window time.Duration) error
	Block(ctx context.Context, key string, duration time.Duration, reason string) error
	IsBlocked(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}
