package middleware

import (
	"net/http"
	"sync"
	"time"

	"tourmate-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	ips map[string]*visitor
	mu  sync.Mutex
	r   rate.Limit // requests per second
	b   int        // burst
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*visitor),
		r:   r,
		b:   b,
	}
}

// GetLimiter returns the limiter of ip, creating it on first use.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	v, exists := i.ips[ip]
	if !exists {
		limiter := rate.NewLimiter(i.r, i.b)
		i.ips[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// Cleanup forgets IPs idle for longer than maxIdle.
func (i *IPRateLimiter) Cleanup(maxIdle time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for ip, v := range i.ips {
		if time.Since(v.lastSeen) > maxIdle {
			delete(i.ips, ip)
		}
	}
}

// Run sweeps idle visitors every interval until stop is closed.
func (i *IPRateLimiter) Run(interval, maxIdle time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			i.Cleanup(maxIdle)
		case <-stop:
			return
		}
	}
}

// RateLimitMiddleware answers 429 once a client IP exhausts its bucket.
func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			utils.APIResponse(c, http.StatusTooManyRequests, false, "Request was throttled.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
