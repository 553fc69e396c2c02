package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-complaint-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records latency and status per route template. Unmatched requests share one
// label so scanners cannot inflate label cardinality. A nil service yields a pass-through.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	if metrics == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
