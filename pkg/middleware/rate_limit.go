package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration
	TTL               time.Duration
}

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	cfg      RateLimiterConfig
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Minute
	}
	if cfg.TTL == 0 {
		cfg.TTL = 3 * time.Minute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	return &RateLimiter{
		cfg:      cfg,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (r *RateLimiter) visitor(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, exists := r.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(r.cfg.RequestsPerSecond), r.cfg.Burst)
		r.visitors[ip] = &visitor{limiter, r.now()}
		return limiter
	}

	v.lastSeen = r.now()
	return v.limiter
}

// Cleanup forgets visitors that have been idle for longer than the TTL
func (r *RateLimiter) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ip, v := range r.visitors {
		if r.now().Sub(v.lastSeen) > r.cfg.TTL {
			delete(r.visitors, ip)
		}
	}
}

// Run calls Cleanup every CleanupInterval until done is closed
func (r *RateLimiter) Run(done <-chan struct{}) {
	ticker := time.NewTicker(r.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			r.Cleanup()
		}
	}
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.visitor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message":   "Too many requests",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}
