package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gudson/kpi/application/port/outbound"
	"github.com/sirupsen/logrus"
)

// rateLimitService implementasi RateLimitService dengan Redis
type rateLimitService struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	prefix      string
}

// RateLimitConfig configuration untuk rate limiting
type RateLimitConfig struct {
	Enabled  bool
	RedisURL string
	// KeyPrefix namespaces every key, default "kpi:".
	KeyPrefix string
}

// NewRateLimitService membuat instance baru dari RateLimitService. When
// disabled it returns a service that never blocks.
func NewRateLimitService(config RateLimitConfig, logger *logrus.Logger) (outbound.RateLimitService, error) {
	if !config.Enabled {
		logger.Info("Rate limiting disabled")
		return NewNoopRateLimitService(), nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisClient := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = "kpi:"
	}

	logger.WithField("prefix", prefix).Info("Rate limiting service initialized")

	return &rateLimitService{
		redisClient: redisClient,
		logger:      logger,
		prefix:      prefix,
	}, nil
}

func (s *rateLimitService) key(key string) string { return s.prefix + key }

func (s *rateLimitService) blockKey(key string) string { return s.prefix + "blocked:" + key }

// CheckLimit mengecek apakah limit telah tercapai
func (s *rateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := s.redisClient.Get(ctx, s.key(key)).Int()
	if err != nil && err != redis.Nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to get attempts count")
		return false, fmt.Errorf("failed to get attempts: %w", err)
	}

	underLimit := count < limit
	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":         key,
		"current":     count,
		"limit":       limit,
		"under_limit": underLimit,
	}).Debug("Rate limit check")

	return underLimit, nil
}

// Increment menambah counter untuk key tertentu
func (s *rateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	pipeline := s.redisClient.TxPipeline()
	incr := pipeline.Incr(ctx, s.key(key))
	pipeline.Expire(ctx, s.key(key), window)

	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to increment rate limit counter")
		return fmt.Errorf("failed to increment rate limit: %w", err)
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":    key,
		"count":  incr.Val(),
		"window": window,
	}).Debug("Rate limit incremented")

	return nil
}

// Block memblokir key untuk durasi tertentu
func (s *rateLimitService) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	pipeline := s.redisClient.TxPipeline()
	pipeline.HSet(ctx, s.blockKey(key), map[string]interface{}{
		"reason":     reason,
		"blocked_at": time.Now().Unix(),
		"duration":   duration.Seconds(),
	})
	pipeline.Expire(ctx, s.blockKey(key), duration)

	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to block key")
		return fmt.Errorf("failed to block key: %w", err)
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":      key,
		"duration": duration,
		"reason":   reason,
	}).Warn("Key blocked due to rate limit exceeded")

	return nil
}

// IsBlocked mengecek apakah key sedang diblokir
func (s *rateLimitService) IsBlocked(ctx context.Context, key string) (bool, error) {
	exists, err := s.redisClient.Exists(ctx, s.blockKey(key)).Result()
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to check block status")
		return false, fmt.Errorf("failed to check block status: %w", err)
	}
	return exists > 0, nil
}

// Reset clears the attempt counter after a successful login.
func (s *rateLimitService) Reset(ctx context.Context, key string) error {
	if err := s.redisClient.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset attempts: %w", err)
	}
	return nil
}

// noopRateLimitService implementasi no-op untuk ketika rate limiting disabled
type noopRateLimitService struct{}

func NewNoopRateLimitService() outbound.RateLimitService {
	return noopRateLimitService{}
}

func (noopRateLimitService) CheckLimit(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}

func (noopRateLimitService) Increment(context.Context, string, time.Duration) error { return nil }

func (noopRateLimitService) Block(context.Context, string, time.Duration, string) error { return nil }

func (noopRateLimitService) IsBlocked(context.Context, string) (bool, error) { return false, nil }

func (noopRateLimitService) Reset(context.Context, string) error { return nil }
