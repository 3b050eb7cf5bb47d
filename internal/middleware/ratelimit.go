package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"

	apierrors "github.com/vizlab/dataviz-api/internal/errors"
)

// RateLimit applies a per-client-IP token bucket. Idle buckets are evicted
// after ten minutes so the limiter table does not grow with every client
// ever seen.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiters := ttlcache.New[string, *rate.Limiter](
		ttlcache.WithTTL[string, *rate.Limiter](10 * time.Minute),
	)
	go limiters.Start()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		// GetOrSet is atomic, so concurrent first requests from one IP share
		// a single bucket instead of each minting a fresh burst.
		item, _ := limiters.GetOrSet(ip, rate.NewLimiter(rate.Limit(rps), burst))
		limiter := item.Value()

		if !limiter.Allow() {
			apierrors.RespondWithError(c, http.StatusTooManyRequests,
				apierrors.NewAPIError(apierrors.ErrCodeRateLimited, "Rate limit exceeded"))
			c.Abort()
			return
		}

		c.Next()
	}
}
