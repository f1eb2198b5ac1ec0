package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket represents a token bucket for rate limiting
type TokenBucket struct {
	tokens     int
	maxTokens  int
	refillRate int
	refillTime time.Duration
	lastRefill time.Time
	lastUsed   time.Time
	mutex      sync.Mutex
}

// RateLimiter keeps one bucket per user and action.
type RateLimiter struct {
	buckets map[string]*TokenBucket
	mutex   sync.RWMutex
	now     func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*TokenBucket),
		now:     time.Now,
	}
}

func NewTokenBucket(maxTokens, refillRate int, refillTime time.Duration, now time.Time) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		refillTime: refillTime,
		lastRefill: now,
		lastUsed:   now,
	}
}

// Allow consumes a token if one is available, otherwise it reports how
// long until the next refill.
func (tb *TokenBucket) Allow(now time.Time) (bool, time.Duration) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.lastUsed = now
	elapsed := now.Sub(tb.lastRefill)
	intervals := int(elapsed / tb.refillTime)

	if intervals > 0 {
		tb.tokens += intervals * tb.refillRate
		if tb.tokens > tb.maxTokens {
			tb.tokens = tb.maxTokens
		}
		tb.lastRefill = tb.lastRefill.Add(time.Duration(intervals) * tb.refillTime)
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true, 0
	}

	return false, tb.lastRefill.Add(tb.refillTime).Sub(now)
}

func (tb *TokenBucket) GetTokens() int {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()
	return tb.tokens
}

func bucketFor(action string, now time.Time) *TokenBucket {
	switch action {
	case "redeem_invite":
		// 5 attempts, then one per 12 minutes
		return NewTokenBucket(5, 1, 12*time.Minute, now)
	case "create_ticket":
		// 10 reports, then one per 6 minutes
		return NewTokenBucket(10, 1, 6*time.Minute, now)
	case "upload_avatar":
		return NewTokenBucket(5, 1, time.Minute, now)
	default:
		// 20 actions per minute
		return NewTokenBucket(20, 1, 3*time.Second, now)
	}
}

// Allow checks if a user action is allowed
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	key := userID + ":" + action
	now := rl.now()

	rl.mutex.RLock()
	bucket, exists := rl.buckets[key]
	rl.mutex.RUnlock()

	if !exists {
		rl.mutex.Lock()
		if bucket, exists = rl.buckets[key]; !exists {
			bucket = bucketFor(action, now)
			rl.buckets[key] = bucket
		}
		rl.mutex.Unlock()
	}

	return bucket.Allow(now)
}

// GetStatus returns current rate limit status for a user action
func (rl *RateLimiter) GetStatus(userID, action string) (tokens int, maxTokens int) {
	rl.mutex.RLock()
	bucket, exists := rl.buckets[userID+":"+action]
	rl.mutex.RUnlock()

	if !exists {
		return 0, 0
	}
	return bucket.GetTokens(), bucket.maxTokens
}

// Cleanup removes buckets idle for more than an hour.
func (rl *RateLimiter) Cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, bucket := range rl.buckets {
		bucket.mutex.Lock()
		idle := now.Sub(bucket.lastUsed)
		bucket.mutex.Unlock()
		if idle > time.Hour {
			delete(rl.buckets, key)
		}
	}
}

// StartCleanupRoutine runs Cleanup every 30 minutes until stop is closed.
func (rl *RateLimiter) StartCleanupRoutine(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}
