package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"woodeoo-auth/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) (*RateLimiter, *time.Time) {
	t.Helper()
	rl := NewRateLimiter("test", max, window)
	t.Cleanup(rl.Stop)

	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_AllowWithinWindow(t *testing.T) {
	rl, now := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "attempt %d", i+1)
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "keys are independent")

	*now = now.Add(20 * time.Second)
	assert.Equal(t, 40*time.Second, rl.TimeUntilReset("1.2.3.4"))

	*now = now.Add(41 * time.Second)
	assert.True(t, rl.Allow("1.2.3.4"), "a new window starts")
}

func TestRateLimiter_Reset(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute)

	require.True(t, rl.Allow("k"))
	require.False(t, rl.Allow("k"))

	rl.Reset("k")
	assert.True(t, rl.Allow("k"))
	assert.Equal(t, time.Duration(0), rl.TimeUntilReset("unknown"))
}

func TestRateLimiter_LimitMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute)

	handler := rl.Limit(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send().Code)

	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	var body utils.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Status)
	assert.NotEmpty(t, body.Error)
}

func TestNewAuthRateLimiter_UsesConfig(t *testing.T) {
	limiter := NewAuthRateLimiter(utils.RateLimitConfig{
		LoginAttempts:    2,
		RegisterAttempts: 1,
		ResetAttempts:    1,
		VerifyAttempts:   4,
	}, zap.NewNop())
	t.Cleanup(limiter.Stop)

	assert.Equal(t, 2, limiter.Login.maxAttempts)
	assert.Equal(t, 15*time.Minute, limiter.Login.window, "zero window falls back to 15 minutes")
	assert.Equal(t, "password_reset", limiter.Reset.name)
	assert.Equal(t, 4, limiter.Verify.maxAttempts)
	assert.Equal(t, "verify_code", limiter.Verify.name)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		headers    map[string]string
		remote     string
		want       string
	}{
		{"forwarded for behind proxy", true, map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:80", "203.0.113.7"},
		{"real ip behind proxy", true, map[string]string{"X-Real-IP": " 198.51.100.2 "}, "10.0.0.1:80", "198.51.100.2"},
		{"proxy without headers", true, nil, "10.0.0.1:80", "10.0.0.1"},
		{"forwarded for ignored", false, map[string]string{"X-Forwarded-For": "203.0.113.7"}, "192.0.2.9:4000", "192.0.2.9"},
		{"real ip ignored", false, map[string]string{"X-Real-IP": "198.51.100.2"}, "192.0.2.9:4000", "192.0.2.9"},
		{"remote without port", false, nil, "192.0.2.9", "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			var got string
			RealIP(tt.trustProxy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIP(r)
			})).ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientIP_WithoutRealIPUsesPeer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:4000"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")

	assert.Equal(t, "192.0.2.9", ClientIP(req))
}

func TestRateLimiter_SpoofedForwardedForSharesBucket(t *testing.T) {
	rl, _ := newTestLimiter(t, 2, time.Minute)

	handler := RealIP(false)(rl.Limit(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	codes := make([]int, 0, 3)
	for _, forged := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-code", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req.Header.Set("X-Forwarded-For", forged)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
