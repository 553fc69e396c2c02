package middleware

import "github.com/gin-gonic/gin"

const (
	cacheHitKey    = "cache_hit"
	cacheHeaderKey = "X-Cache"
)

// SetCacheHit marks whether the response body came from the dashboard/analytics cache.
// It must run before the body is written.
func SetCacheHit(c *gin.Context, hit bool) {
	c.Set(cacheHitKey, hit)
	if hit {
		c.Header(cacheHeaderKey, "HIT")
		return
	}
	c.Header(cacheHeaderKey, "MISS")
}

// CacheHit reports what SetCacheHit recorded.
func CacheHit(c *gin.Context) bool {
	return c.GetBool(cacheHitKey)
}
