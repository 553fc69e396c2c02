package cors

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	allowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	allowedHeaders = "Authorization, Content-Type, X-Requested-With, X-Request-ID"
	// Clients read the download filename, the request id and the dashboard cache marker.
	exposedHeaders = "Content-Disposition, X-Request-ID, X-Cache"
)

// Config lists the browser origins allowed to call the API.
// An empty list allows any origin without credentials.
type Config struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

// New returns CORS middleware for the given origins.
func New(allowedOrigins []string) gin.HandlerFunc {
	return WithConfig(Config{AllowedOrigins: allowedOrigins})
}

// WithConfig returns CORS middleware. Preflight requests are answered with 204 and never reach handlers.
func WithConfig(cfg Config) gin.HandlerFunc {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 10 * time.Minute
	}
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))

	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if origin = normalizeOrigin(origin); origin != "" {
			origins[origin] = struct{}{}
		}
	}
	open := len(origins) == 0

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		switch {
		case origin == "" && open:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin == "":
		case open:
			h.Set("Access-Control-Allow-Origin", origin)
		default:
			if _, ok := origins[normalizeOrigin(origin)]; ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}
		h.Set("Access-Control-Expose-Headers", exposedHeaders)

		if isPreflight(c.Request) {
			h.Set("Access-Control-Allow-Methods", allowedMethods)
			h.Set("Access-Control-Allow-Headers", allowedHeaders)
			h.Set("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

func normalizeOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
