package middleware

import (
	"net/http"
	"sync"
	"time"

	"casaora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultRequestsPerMin = 200
	// Buckets untouched for this long are dropped; a fresh bucket is full anyway.
	limiterIdleTTL = 10 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. The IP comes from
// gin's ClientIP, so forwarded headers count only from trusted proxies.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	perMin    int
	lastSweep time.Time
	Now       func() time.Time
}

func NewRateLimiter(perMin int) *RateLimiter {
	if perMin <= 0 {
		perMin = defaultRequestsPerMin
	}
	return &RateLimiter{visitors: make(map[string]*visitor), perMin: perMin, Now: time.Now}
}

func (s *RateLimiter) limiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	if now.Sub(s.lastSweep) >= limiterIdleTTL {
		for key, v := range s.visitors {
			if now.Sub(v.lastSeen) >= limiterIdleTTL {
				delete(s.visitors, key)
			}
		}
		s.lastSweep = now
	}

	v, ok := s.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), s.perMin)}
		s.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Middleware rejects requests beyond perMin per minute from one IP.
func (s *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !s.limiter(ip).Allow() {
			utils.GetLogger().Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.ErrorResponse{
				Message:   "Rate limit exceeded. Try again later.",
				Retryable: true,
			})
			return
		}
		c.Next()
	}
}
