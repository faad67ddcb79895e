package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/yantrahq/yantra/internal/api/dto/common"
	"github.com/yantrahq/yantra/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for the rate limiter
type RateLimitConfig struct {
	// Requests per second per client IP
	RPS float64
	// Burst size (number of requests that can be made in a single burst)
	Burst int
	// IdleTTL drops the limiter of a client not seen for this long
	IdleTTL time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware limits requests per client IP
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}

	var (
		mu        sync.Mutex
		clients   = make(map[string]*clientLimiter)
		lastPrune = time.Now()
	)

	limiterFor := func(ip string, now time.Time) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		if now.Sub(lastPrune) > config.IdleTTL {
			for k, cl := range clients {
				if now.Sub(cl.lastSeen) > config.IdleTTL {
					delete(clients, k)
				}
			}
			lastPrune = now
		}

		cl, ok := clients[ip]
		if !ok {
			cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(config.RPS), config.Burst)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		return cl.limiter
	}

	return func(c *gin.Context) {
		now := time.Now()
		limiter := limiterFor(utils.GetRealIP(c), now)

		if !limiter.AllowN(now, 1) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.NewErrorResponse(common.ErrCodeTooManyRequests, "Rate limit exceeded. Please try again later.", nil))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatFloat(config.RPS, 'f', -1, 64))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.TokensAt(now))))

		c.Next()
	}
}
