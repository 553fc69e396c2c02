package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-complaint-api/internal/service"
	"github.com/noah-isme/civic-complaint-api/pkg/database"
)

const readinessTimeout = 2 * time.Second

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	db      database.Pinger
	cache   database.Pinger
	logger  *zap.Logger
}

// NewMetricsHandler constructs a metrics handler. db may be nil, in which case readiness always passes.
func NewMetricsHandler(metrics *service.MetricsService, db database.Pinger, logger *zap.Logger) *MetricsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsHandler{metrics: metrics, db: db, logger: logger}
}

// WithCache adds the cache to readiness output. A failing cache is reported but never
// fails readiness, since every cached read falls back to the database.
func (h *MetricsHandler) WithCache(cache database.Pinger) *MetricsHandler {
	h.cache = cache
	return h
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
}

// Ready reports 503 until the database answers a ping.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	body := gin.H{"status": "ready", "database": "up", "cache": "disabled"}
	if h.cache != nil {
		body["cache"] = "up"
		if err := h.cache.PingContext(ctx); err != nil {
			h.logger.Warn("cache ping failed", zap.Error(err))
			body["cache"] = "down"
		}
	}
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.Error(err))
			body["status"] = "unavailable"
			body["database"] = "down"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}
