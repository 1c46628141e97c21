package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const maxLoginBody = 1 << 16

// RateLimiter counts failed logins per client IP and email. Once an
// ip+email pair reaches MaxAttempts inside WindowDuration it is locked out
// for LockoutDuration.
type RateLimiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu       sync.Mutex
	attempts map[string]*attemptRecord

	stopOnce sync.Once
	stop     chan struct{}
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int           // default 5
	WindowDuration  time.Duration // default 15m
	LockoutDuration time.Duration // default 30m
	CleanupInterval time.Duration // default 5m
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     5,
		WindowDuration:  15 * time.Minute,
		LockoutDuration: 30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewRateLimiter creates a limiter and starts its cleanup goroutine. Zero
// fields of cfg take the defaults. Call Stop to release the goroutine.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	def := DefaultRateLimitConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = def.WindowDuration
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	rl := &RateLimiter{
		cfg:      cfg,
		now:      time.Now,
		attempts: make(map[string]*attemptRecord),
		stop:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop ends the cleanup goroutine. It may be called more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func attemptKey(ip, email string) string {
	return ip + ":" + email
}

// windowExpired reports whether the counting window of r has passed.
func (rl *RateLimiter) windowExpired(r *attemptRecord, now time.Time) bool {
	return now.Sub(r.firstAttempt) > rl.cfg.WindowDuration
}

// Allow reports whether another attempt may be made and, if not, how long
// the caller has to wait.
func (rl *RateLimiter) Allow(ip, email string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	r, ok := rl.attempts[attemptKey(ip, email)]
	switch {
	case !ok:
		return true, 0
	case now.Before(r.lockedUntil):
		return false, r.lockedUntil.Sub(now)
	case rl.windowExpired(r, now), r.count < rl.cfg.MaxAttempts:
		return true, 0
	default:
		return false, rl.cfg.LockoutDuration
	}
}

// RecordFailure counts a failed attempt. It returns true with the lockout
// duration when this attempt triggered a lockout.
func (rl *RateLimiter) RecordFailure(ip, email string) (bool, time.Duration) {
	now := rl.now()
	key := attemptKey(ip, email)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	r, ok := rl.attempts[key]
	if !ok || rl.windowExpired(r, now) {
		r = &attemptRecord{firstAttempt: now}
		rl.attempts[key] = r
	}

	r.count++
	if r.count < rl.cfg.MaxAttempts {
		return false, 0
	}
	r.lockedUntil = now.Add(rl.cfg.LockoutDuration)
	return true, rl.cfg.LockoutDuration
}

// RecordSuccess forgets the failures of the pair.
func (rl *RateLimiter) RecordSuccess(ip, email string) {
	rl.mu.Lock()
	delete(rl.attempts, attemptKey(ip, email))
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// cleanup drops records whose window and lockout are both over.
func (rl *RateLimiter) cleanup() {
	now := rl.now()
	expiry := rl.cfg.WindowDuration + rl.cfg.LockoutDuration

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, r := range rl.attempts {
		if now.Sub(r.firstAttempt) > expiry && !now.Before(r.lockedUntil) {
			delete(rl.attempts, key)
		}
	}
}

// RateLimitMiddleware creates Gin middleware for rate limiting login attempts.
// It should be applied only to the login route. The attempt key is the client
// IP plus the email from the JSON body; the body is restored for the handler.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only check on POST (actual login attempt)
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		email := loginEmail(c)
		if email == "" {
			c.Next()
			return
		}

		allowed, retryAfter := rl.Allow(c.ClientIP(), email)
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many login attempts",
				"retry_after": retryAfter.String(),
			})
			return
		}

		c.Next()
	}
}

// loginEmail peeks at the request body for the login email.
func loginEmail(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxLoginBody))
	_ = c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(req.Email))
}
