package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/infrastructure/http/response"
	"github.com/gudson/kpi/infrastructure/service/logger"
)

// RateLimitPolicy bounds requests per client IP on one route.
type RateLimitPolicy struct {
	Scope         string
	Limit         int
	Window        time.Duration
	BlockDuration time.Duration
}

// LoginRateLimit throttles credential guessing spread over many usernames.
// The per-username budget lives in the auth use case.
var LoginRateLimit = RateLimitPolicy{
	Scope:         "login",
	Limit:         20,
	Window:        15 * time.Minute,
	BlockDuration: 30 * time.Minute,
}

type RateLimitMiddleware struct {
	rateLimitService outbound.RateLimitService
	logger           logger.Logger
}

func NewRateLimitMiddleware(rateLimitService outbound.RateLimitService, logger logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		logger:           logger,
	}
}

func (m *RateLimitMiddleware) RateLimit(policy RateLimitPolicy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.rateLimitService == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		clientIP := getClientIP(r)
		key := fmt.Sprintf("%s:ip:%s", policy.Scope, clientIP)

		isBlocked, err := m.rateLimitService.IsBlocked(ctx, key)
		if err != nil {
			// fail open
			m.logger.Error(ctx, "Failed to check block status", err, map[string]interface{}{
				"ip":  clientIP,
				"key": key,
			})
		}
		if isBlocked {
			logger.LogSecurityEvent(ctx, m.logger, "rate_limit_blocked", "MEDIUM", map[string]interface{}{
				"ip":        clientIP,
				"path":      r.URL.Path,
				"userAgent": r.UserAgent(),
			})
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(policy.BlockDuration.Seconds())))
			response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		if err := m.rateLimitService.Increment(ctx, key, policy.Window); err != nil {
			m.logger.Error(ctx, "Failed to count request", err, map[string]interface{}{"key": key})
			next.ServeHTTP(w, r)
			return
		}
		allowed, err := m.rateLimitService.CheckLimit(ctx, key, policy.Limit+1, policy.Window)
		if err == nil && !allowed {
			if err := m.rateLimitService.Block(ctx, key, policy.BlockDuration, "Rate limit exceeded"); err != nil {
				m.logger.Error(ctx, "Failed to block IP", err, map[string]interface{}{
					"ip":  clientIP,
					"key": key,
				})
			}
			logger.LogSecurityEvent(ctx, m.logger, "rate_limit_exceeded", "HIGH", map[string]interface{}{
				"ip":   clientIP,
				"path": r.URL.Path,
			})
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(policy.BlockDuration.Seconds())))
			response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// first hop is the client
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
