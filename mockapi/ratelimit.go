package mockapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// rateLimitMiddleware applies a per-IP token bucket. Generous by default; the
// knob exists so load-style tests can tighten it.
func rateLimitMiddleware(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = 600
	}
	limit := rate.Every(time.Minute / time.Duration(perMinute))
	burst := perMinute

	var mu sync.Mutex
	limiters := map[string]*clientLimiter{}

	return func(ctx *gin.Context) {
		ip := ctx.ClientIP()

		mu.Lock()
		now := time.Now()
		for key, l := range limiters {
			if now.After(l.expires) {
				delete(limiters, key)
			}
		}
		l, ok := limiters[ip]
		if !ok {
			l = &clientLimiter{limiter: rate.NewLimiter(limit, burst)}
			limiters[ip] = l
		}
		l.expires = now.Add(5 * time.Minute)
		allowed := l.limiter.Allow()
		mu.Unlock()

		if !allowed {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "rate limit exceeded"})
			return
		}
		ctx.Next()
	}
}
