package server

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// securityHeaders applies the standard OWASP response headers. HSTS is only
// meaningful behind TLS, so it is limited to production.
func securityHeaders(production bool) (handler gin.HandlerFunc) {
	handler = func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if production {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
	return handler
}

// requestLogger attaches a request id and emits one structured line per
// request.
func requestLogger(logger *zap.Logger) (handler gin.HandlerFunc) {
	handler = func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
	return handler
}

// maxBodySize rejects request bodies over the configured limit.
func maxBodySize(maxBytes int64) (handler gin.HandlerFunc) {
	handler = func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
	return handler
}

// rateLimiter is a sliding-window per-client limiter. Client identity is a
// hashed IP so raw addresses never sit in memory or logs.
type rateLimiter struct {
	mu        sync.Mutex
	perMinute int
	windows   map[string][]time.Time
	lastPrune time.Time
}

// newRateLimiter creates a limiter allowing perMinute requests per client.
func newRateLimiter(perMinute int) (rl *rateLimiter) {
	rl = &rateLimiter{
		perMinute: perMinute,
		windows:   map[string][]time.Time{},
		lastPrune: time.Now(),
	}
	return rl
}

// allow records one request for the client and reports whether it fits in the
// window.
func (rl *rateLimiter) allow(clientKey string) (ok bool) {
	now := time.Now()
	cutoff := now.Add(-time.Minute)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Drop idle clients occasionally to bound memory.
	if now.Sub(rl.lastPrune) > 5*time.Minute {
		for key, window := range rl.windows {
			if len(window) == 0 || window[len(window)-1].Before(cutoff) {
				delete(rl.windows, key)
			}
		}
		rl.lastPrune = now
	}

	window := rl.windows[clientKey]
	kept := window[:0]
	for _, t := range window {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= rl.perMinute {
		rl.windows[clientKey] = kept
		return false
	}

	rl.windows[clientKey] = append(kept, now)
	ok = true
	return ok
}

// middleware wraps the limiter as a gin handler.
func (rl *rateLimiter) middleware() (handler gin.HandlerFunc) {
	handler = func(c *gin.Context) {
		if !rl.allow(hashClientIP(c.ClientIP())) {
			c.Header("Retry-After", "60")
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, try again later",
			})
			return
		}
		c.Next()
	}
	return handler
}

// hashClientIP derives a stable anonymous key from a client address.
func hashClientIP(ip string) (key string) {
	sum := sha256.Sum256([]byte(ip))
	key = hex.EncodeToString(sum[:8])
	return key
}
