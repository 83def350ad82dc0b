// FILE: relog/src/middleware/ratelimit.go
package middleware

import (
	"sync"
	"time"

	"relog/src/relog"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

var limitLog = relog.New("relog.limit")

// RateLimiter provides per-client rate limiting for the demo server.
// Rejections are logged as WARN lines tagged with the offending
// request's correlation id.
type RateLimiter struct {
	clients         sync.Map // map[string]*clientLimiter
	requestsPerSec  int
	burstSize       int
	cleanupInterval time.Duration
	done            chan struct{}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

// NewRateLimiter creates a rate limiting middleware.
func NewRateLimiter(requestsPerSec, burstSize int, cleanupIntervalSec int64) *RateLimiter {
	if cleanupIntervalSec <= 0 {
		cleanupIntervalSec = 60
	}
	rl := &RateLimiter{
		requestsPerSec:  requestsPerSec,
		burstSize:       burstSize,
		cleanupInterval: time.Duration(cleanupIntervalSec) * time.Second,
		done:            make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Middleware wraps a handler with the rate limit check.
func (rl *RateLimiter) Middleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(c *fasthttp.RequestCtx) {
		clientIP := c.RemoteIP().String()
		if forwarded := c.Request.Header.Peek("X-Forwarded-For"); len(forwarded) > 0 {
			clientIP = string(forwarded)
		}

		if !rl.getLimiter(clientIP).Allow() {
			limitLog.Warning(c, "Rate limit exceeded for %s", clientIP)
			c.Error("Rate limit exceeded", fasthttp.StatusTooManyRequests)
			return
		}

		next(c)
	}
}

// getLimiter returns the rate limiter for a client.
func (rl *RateLimiter) getLimiter(clientIP string) *rate.Limiter {
	if val, ok := rl.clients.Load(clientIP); ok {
		client := val.(*clientLimiter)
		client.mu.Lock()
		client.lastSeen = time.Now()
		client.mu.Unlock()
		return client.limiter
	}

	client := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Limit(rl.requestsPerSec), rl.burstSize),
		lastSeen: time.Now(),
	}

	actual, _ := rl.clients.LoadOrStore(clientIP, client)
	return actual.(*clientLimiter).limiter
}

// cleanup removes limiters for clients not seen recently.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.removeOldClients()
		}
	}
}

func (rl *RateLimiter) removeOldClients() {
	// Keep clients for 2x the cleanup interval.
	threshold := time.Now().Add(-rl.cleanupInterval * 2)

	rl.clients.Range(func(key, value any) bool {
		client := value.(*clientLimiter)
		client.mu.Lock()
		stale := client.lastSeen.Before(threshold)
		client.mu.Unlock()
		if stale {
			rl.clients.Delete(key)
		}
		return true
	})
}

// Stop gracefully shuts down the rate limiter.
func (rl *RateLimiter) Stop() {
	close(rl.done)
}
