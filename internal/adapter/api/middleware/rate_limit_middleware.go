package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"civicalert/pkg/logger"
)

// RateLimiter implements token bucket algorithm for rate limiting
type RateLimiter struct {
	visitors map[string]*Visitor
	mu       sync.Mutex
	rate     int
	window   time.Duration
}

type Visitor struct {
	tokens     int
	lastSeen   time.Time
	blocked    bool
	blockUntil time.Time
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*Visitor),
		rate:     rate,
		window:   window,
	}
}

// RateLimitMiddleware limits requests per client IP.
func (rl *RateLimiter) RateLimitMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			if blocked, resetTime := rl.take(ip, time.Now()); blocked {
				logger.Warn("RATE LIMIT: Blocked request from IP %s (reset in %v)", ip, time.Until(resetTime))
				c.Response().Header().Set("Retry-After", retryAfter(resetTime))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded")
			}

			return next(c)
		}
	}
}

// take consumes one token for ip and reports whether the request is blocked.
func (rl *RateLimiter) take(ip string, now time.Time) (bool, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	visitor, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &Visitor{tokens: rl.rate - 1, lastSeen: now}
		return false, time.Time{}
	}

	if visitor.blocked {
		if now.Before(visitor.blockUntil) {
			return true, visitor.blockUntil
		}
		visitor.blocked = false
		visitor.tokens = rl.rate
		visitor.lastSeen = now
	}

	refill := int(now.Sub(visitor.lastSeen) * time.Duration(rl.rate) / rl.window)
	if refill > 0 {
		visitor.tokens += refill
		if visitor.tokens > rl.rate {
			visitor.tokens = rl.rate
		}
		visitor.lastSeen = now
	}

	if visitor.tokens <= 0 {
		visitor.blocked = true
		visitor.blockUntil = now.Add(rl.window)
		logger.Warn("SECURITY: Rate limiting activated for IP %s", ip)
		return true, visitor.blockUntil
	}

	visitor.tokens--
	return false, time.Time{}
}

// Cleanup removes visitors not seen for two windows.
func (rl *RateLimiter) Cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, visitor := range rl.visitors {
		if now.Sub(visitor.lastSeen) > 2*rl.window && !(visitor.blocked && now.Before(visitor.blockUntil)) {
			delete(rl.visitors, ip)
		}
	}
}

func retryAfter(reset time.Time) string {
	return strconv.Itoa(int(time.Until(reset).Seconds()) + 1)
}

// StartCleanupRoutine sweeps the shared limiters every 30 minutes until
// stop is closed.
func StartCleanupRoutine(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				GeneralLimiter.Cleanup(now)
				AuthLimiter.Cleanup(now)
			case <-stop:
				return
			}
		}
	}()
}

var (
	// GeneralLimiter allows 60 requests per minute per IP.
	GeneralLimiter = NewRateLimiter(60, time.Minute)

	// AuthLimiter allows 5 sign-up attempts per minute per IP.
	AuthLimiter = NewRateLimiter(5, time.Minute)
)

func GeneralRateLimit() echo.MiddlewareFunc {
	return GeneralLimiter.RateLimitMiddleware()
}

func AuthRateLimit() echo.MiddlewareFunc {
	return AuthLimiter.RateLimitMiddleware()
}
