package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"woodeoo-auth/pkg/metrics"
	"woodeoo-auth/pkg/utils"

	"go.uber.org/zap"
)

// ==================== RATE LIMITER ====================

// RateLimiter counts requests per key in a fixed window.
type RateLimiter struct {
	name        string
	maxAttempts int
	window      time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	done    chan struct{}
	once    sync.Once
}

type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter starts a limiter and its cleanup loop; Stop ends the loop.
func NewRateLimiter(name string, maxAttempts int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		name:        name,
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
		entries:     make(map[string]*rateLimitEntry),
		done:        make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow reports whether a request for key fits in the current window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, exists := rl.entries[key]

	if !exists || now.Sub(entry.windowStart) > rl.window {
		rl.entries[key] = &rateLimitEntry{count: 1, windowStart: now}
		return true
	}

	if entry.count < rl.maxAttempts {
		entry.count++
		return true
	}

	return false
}

// Reset clears the count of key.
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.entries, key)
}

// TimeUntilReset returns how long until the window of key ends.
func (rl *RateLimiter) TimeUntilReset(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.entries[key]
	if !exists {
		return 0
	}

	elapsed := rl.now().Sub(entry.windowStart)
	if elapsed >= rl.window {
		return 0
	}

	return rl.window - elapsed
}

func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, entry := range rl.entries {
				if now.Sub(entry.windowStart) > rl.window {
					delete(rl.entries, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Limit returns middleware refusing requests over the limit with 429.
func (rl *RateLimiter) Limit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ClientIP(r)

			if !rl.Allow(clientIP) {
				logger.Warn("Rate limit exceeded",
					zap.String("limiter", rl.name),
					zap.String("ip", clientIP),
					zap.String("path", r.URL.Path),
				)
				metrics.RateLimitedTotal.WithLabelValues(rl.name).Inc()

				retryAfter := int(rl.TimeUntilReset(clientIP).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				utils.ResponseTooManyRequests(w, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ==================== AUTH RATE LIMITER ====================

// AuthRateLimiter groups the limiters of the auth endpoints.
type AuthRateLimiter struct {
	Login    *RateLimiter
	Register *RateLimiter
	Reset    *RateLimiter
	Verify   *RateLimiter
	logger   *zap.Logger
}

func NewAuthRateLimiter(config utils.RateLimitConfig, logger *zap.Logger) *AuthRateLimiter {
	window := time.Duration(config.WindowMinutes) * time.Minute
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &AuthRateLimiter{
		Login:    NewRateLimiter("login", config.LoginAttempts, window),
		Register: NewRateLimiter("register", config.RegisterAttempts, window),
		Reset:    NewRateLimiter("password_reset", config.ResetAttempts, window),
		Verify:   NewRateLimiter("verify_code", config.VerifyAttempts, window),
		logger:   logger,
	}
}

func (a *AuthRateLimiter) LimitLogin(next http.Handler) http.Handler {
	return a.Login.Limit(a.logger)(next)
}

func (a *AuthRateLimiter) LimitRegister(next http.Handler) http.Handler {
	return a.Register.Limit(a.logger)(next)
}

func (a *AuthRateLimiter) LimitPasswordReset(next http.Handler) http.Handler {
	return a.Reset.Limit(a.logger)(next)
}

// LimitVerify guards the endpoints that check a one-time code.
func (a *AuthRateLimiter) LimitVerify(next http.Handler) http.Handler {
	return a.Verify.Limit(a.logger)(next)
}

func (a *AuthRateLimiter) Stop() {
	a.Login.Stop()
	a.Register.Stop()
	a.Reset.Stop()
	a.Verify.Stop()
}

// ==================== CLIENT ADDRESS ====================

type clientIPKey struct{}

// RealIP resolves the client address once per request. X-Forwarded-For and
// X-Real-IP are honoured only when trustProxy is set; otherwise any client
// could pick its own rate limit key.
func RealIP(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := peerIP(r)
			if trustProxy {
				if forwarded := forwardedIP(r); forwarded != "" {
					ip = forwarded
				}
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIPKey{}, ip)))
		})
	}
}

// ClientIP returns the address resolved by RealIP, or the peer address when
// the request did not pass through it.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey{}).(string); ok && ip != "" {
		return ip
	}
	return peerIP(r)
}

func forwardedIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if clientIP := strings.TrimSpace(first); clientIP != "" {
			return clientIP
		}
	}

	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}

func peerIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}
