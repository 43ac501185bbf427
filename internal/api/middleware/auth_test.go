package middleware

import (
	"bytes"
	"loan-service/internal/config"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	secret := "testsecret"

	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: secret,
	}

	serve := func(cfg config.AuthConfig, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		AuthMiddleware(cfg, logger)(okHandler()).ServeHTTP(rec, req)
		return rec
	}

	sign := func(method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	t.Run("should allow request when middleware is disabled", func(t *testing.T) {
		disabled := cfg
		disabled.Enabled = false
		assert.Equal(t, http.StatusOK, serve(disabled, "").Code)
	})

	t.Run("should reject request with missing Authorization header", func(t *testing.T) {
		rec := serve(cfg, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":{"code":"UNAUTHORIZED","message":"Unauthorized"}}`, rec.Body.String())
	})

	t.Run("should reject malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(cfg, "Token abc").Code)
	})

	t.Run("should reject request with invalid token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(cfg, "Bearer invalidtoken").Code)
	})

	t.Run("should reject token signed with another secret", func(t *testing.T) {
		token := sign(jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "jane"})
		assert.Equal(t, http.StatusUnauthorized, serve(cfg, "Bearer "+token).Code)
	})

	t.Run("should reject expired token", func(t *testing.T) {
		token := sign(jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "jane", "exp": time.Now().Add(-time.Hour).Unix()})
		assert.Equal(t, http.StatusUnauthorized, serve(cfg, "Bearer "+token).Code)
	})

	t.Run("should allow request with valid token", func(t *testing.T) {
		token := sign(jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "1234567890"})
		assert.Equal(t, http.StatusOK, serve(cfg, "Bearer "+token).Code)
	})
}
