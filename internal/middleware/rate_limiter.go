package middleware

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

func keyFunc(c *gin.Context) string {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		return "ip: " + c.ClientIP()
	}
	return "user: " + user.ID.String()
}

func errorHandler(c *gin.Context, _ ratelimit.Info) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, utilities.ErrorResponse{
		Error: "Too many requests. Please try again later.",
	})
}

// RateLimiterMiddleware allows reqPerSec requests per second per user, or per client
// IP before authentication. Counters live in Redis when rdb is set so every instance
// shares them.
func RateLimiterMiddleware(reqPerSec uint, rdb *redis.Client) gin.HandlerFunc {
	if reqPerSec == 0 {
		reqPerSec = 5
	}

	var store ratelimit.Store
	if rdb != nil {
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: rdb,
			Rate:        time.Second,
			Limit:       reqPerSec,
		})
	} else {
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  time.Second,
			Limit: reqPerSec,
		})
	}

	return ratelimit.RateLimiter(store, &ratelimit.Options{
		KeyFunc:      keyFunc,
		ErrorHandler: errorHandler,
	})
}
