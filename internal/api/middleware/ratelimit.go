package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"loan-service/internal/config"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	redisWindow            = 1 * time.Second
)

type limiter interface {
	Allow(ctx context.Context, ip string) (bool, error)
}

type RateLimiterMiddleware struct {
	backend limiter
	cfg     config.RateLimitConfig
	logger  *slog.Logger
	stop    chan struct{}
	once    sync.Once
}

// NewRateLimiterMiddleware builds a per-IP limiter. The redis backend is a fixed
// one-second window shared across instances; it falls back to local token buckets
// when no client is given.
func NewRateLimiterMiddleware(cfg config.RateLimitConfig, redisClient redis.UniversalClient, logger *slog.Logger) *RateLimiterMiddleware {
	logger = logger.With("component", "RateLimiter")
	rl := &RateLimiterMiddleware{
		cfg:    cfg,
		logger: logger,
		stop:   make(chan struct{}),
	}

	if !cfg.Enabled {
		logger.Info("Rate limiting is disabled via configuration.")
		return rl
	}

	if cfg.Backend == config.RateLimitBackendRedis {
		if redisClient != nil {
			rl.backend = &redisLimiter{client: redisClient, limit: int64(math.Ceil(cfg.RPS)), window: redisWindow}
			logger.Info("Rate limiter middleware configured", "backend", config.RateLimitBackendRedis, "rps", cfg.RPS, "window", redisWindow)
			return rl
		}
		logger.Warn("Redis rate limiting requested but no Redis client provided; using local limiter.")
	}

	local := &localLimiter{rps: rate.Limit(cfg.RPS), burst: cfg.Burst}
	rl.backend = local
	go local.cleanup(rl.stop, limiterCleanupInterval)
	logger.Info("Rate limiter middleware configured", "backend", config.RateLimitBackendLocal, "rps", cfg.RPS, "burst", cfg.Burst)
	return rl
}

func (rl *RateLimiterMiddleware) IsEnabled() bool {
	return rl.cfg.Enabled && rl.backend != nil
}

// Close stops the background cleanup of idle local limiters.
func (rl *RateLimiterMiddleware) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	xRealIP := r.Header.Get("X-Real-IP")
	if xRealIP != "" {
		return strings.TrimSpace(xRealIP)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if !rl.IsEnabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)

		allowed, err := rl.backend.Allow(r.Context(), ip)
		if err != nil {
			rl.logger.ErrorContext(r.Context(), "Rate limiter check failed, allowing request", "ip", ip, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error": map[string]string{
					"message": "Rate limit exceeded",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

type localLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
}

func (l *localLimiter) Allow(_ context.Context, ip string) (bool, error) {
	return l.get(ip).Allow(), nil
}

func (l *localLimiter) get(ip string) *rate.Limiter {
	if existing, ok := l.limiters.Load(ip); ok {
		return existing.(*rate.Limiter)
	}
	actual, _ := l.limiters.LoadOrStore(ip, rate.NewLimiter(l.rps, l.burst))
	return actual.(*rate.Limiter)
}

func (l *localLimiter) cleanup(stop <-chan struct{}, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.sweep(time.Now())
		}
	}
}

// sweep drops limiters whose bucket has refilled completely.
func (l *localLimiter) sweep(now time.Time) {
	l.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).TokensAt(now) >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

type redisLimiter struct {
	client redis.UniversalClient
	limit  int64
	window time.Duration
}

func (l *redisLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s", ip)

	pipe := l.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis pipeline failed: %w", err)
	}

	count, err := incrCmd.Result()
	if err != nil {
		return false, err
	}

	if ttl := ttlCmd.Val(); ttl < 0 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit expiry: %w", err)
		}
	}

	return count <= l.limit, nil
}
