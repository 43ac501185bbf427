package middleware

import (
	"bytes"
	"encoding/json"
	"loan-service/internal/config"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveFrom(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	cfg := config.RateLimitConfig{
		Enabled: true,
		Backend: config.RateLimitBackendLocal,
		RPS:     1,
		Burst:   2,
	}

	rl := NewRateLimiterMiddleware(cfg, nil, logger)
	defer rl.Close()
	handler := rl.Middleware(okHandler())

	t.Run("allows requests up to the burst", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serveFrom(handler, "10.1.1.1").Code)
		assert.Equal(t, http.StatusOK, serveFrom(handler, "10.1.1.1").Code)
	})

	t.Run("blocks requests exceeding the rate limit", func(t *testing.T) {
		rec := serveFrom(handler, "10.1.1.1")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))

		var response map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, false, response["success"])
		assert.Equal(t, "Rate limit exceeded", response["error"].(map[string]any)["message"])
	})

	t.Run("limits are per client", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serveFrom(handler, "10.2.2.2").Code)
	})

	t.Run("extractIP handles various headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1")
		assert.Equal(t, "192.168.1.1", rl.extractIP(req))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		assert.Equal(t, "10.0.0.1", rl.extractIP(req))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "127.0.0.1:12345"
		assert.Equal(t, "127.0.0.1", rl.extractIP(req))
	})
}

func TestRateLimiterDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	rl := NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: false, RPS: 1, Burst: 1}, nil, logger)
	defer rl.Close()

	assert.False(t, rl.IsEnabled())
	handler := rl.Middleware(okHandler())
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serveFrom(handler, "10.0.0.9").Code)
	}
}

func TestLocalLimiterSweep(t *testing.T) {
	l := &localLimiter{rps: 1, burst: 1}
	l.get("10.0.0.1").Allow()
	l.get("10.0.0.2")

	l.sweep(time.Now())
	_, drained := l.limiters.Load("10.0.0.1")
	_, idle := l.limiters.Load("10.0.0.2")
	assert.True(t, drained)
	assert.False(t, idle)

	l.sweep(time.Now().Add(2 * time.Second))
	_, drained = l.limiters.Load("10.0.0.1")
	assert.False(t, drained)
}

func TestRedisRateLimiter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := config.RateLimitConfig{Enabled: true, Backend: config.RateLimitBackendRedis, RPS: 2}
	rl := NewRateLimiterMiddleware(cfg, client, logger)
	defer rl.Close()
	require.IsType(t, &redisLimiter{}, rl.backend)

	handler := rl.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, serveFrom(handler, "10.3.3.3").Code)
	assert.Equal(t, http.StatusOK, serveFrom(handler, "10.3.3.3").Code)
	assert.Equal(t, http.StatusTooManyRequests, serveFrom(handler, "10.3.3.3").Code)
	assert.True(t, mr.TTL("ratelimit:10.3.3.3") > 0)

	mr.FastForward(2 * time.Second)
	assert.Equal(t, http.StatusOK, serveFrom(handler, "10.3.3.3").Code)

	t.Run("fails open when redis is unavailable", func(t *testing.T) {
		mr.Close()
		assert.Equal(t, http.StatusOK, serveFrom(handler, "10.3.3.3").Code)
	})
}

func TestRedisBackendWithoutClientFallsBack(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	rl := NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: true, Backend: config.RateLimitBackendRedis, RPS: 1, Burst: 1}, nil, logger)
	defer rl.Close()

	assert.IsType(t, &localLimiter{}, rl.backend)
}
