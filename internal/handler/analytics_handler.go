package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-complaint-api/internal/dto"
	"github.com/noah-isme/civic-complaint-api/internal/middleware"
	"github.com/noah-isme/civic-complaint-api/internal/models"
	"github.com/noah-isme/civic-complaint-api/internal/service"
	"github.com/noah-isme/civic-complaint-api/pkg/response"
)

type analyticsService interface {
	Trends(ctx context.Context, days int) (*dto.TrendsResponse, bool, error)
	Categories(ctx context.Context) (*dto.CategoriesResponse, bool, error)
	Statuses(ctx context.Context) (*dto.StatusResponse, bool, error)
	Areas(ctx context.Context, limit int) (*dto.AreasResponse, bool, error)
	System() models.AnalyticsSystemMetrics
}

type exportService interface {
	Export(ctx context.Context, official models.Official, query dto.ExportQuery) (*dto.ExportFile, error)
}

// AnalyticsHandler exposes aggregate reporting and exports to officials.
type AnalyticsHandler struct {
	analytics analyticsService
	exports   exportService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService, exports exportService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, exports: exports}
}

// Trends godoc
// @Summary Daily complaint counts
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (1-365, default 30)"
// @Success 200 {object} dto.TrendsResponse
// @Failure 400 {object} response.ErrorBody
// @Router /analytics/trends [get]
func (h *AnalyticsHandler) Trends(c *gin.Context) {
	days, err := queryInt(c, "days", service.DefaultTrendDays)
	if err != nil {
		response.Error(c, err)
		return
	}
	trends, cacheHit, err := h.analytics.Trends(c.Request.Context(), days)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.OK(c, trends)
}

// Categories godoc
// @Summary Complaint counts per category
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CategoriesResponse
// @Router /analytics/categories [get]
func (h *AnalyticsHandler) Categories(c *gin.Context) {
	categories, cacheHit, err := h.analytics.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.OK(c, categories)
}

// Status godoc
// @Summary Complaint counts per status
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StatusResponse
// @Router /analytics/status [get]
func (h *AnalyticsHandler) Status(c *gin.Context) {
	statuses, cacheHit, err := h.analytics.Statuses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.OK(c, statuses)
}

// Areas godoc
// @Summary Busiest complaint locations
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of areas (1-50, default 10)"
// @Success 200 {object} dto.AreasResponse
// @Router /analytics/areas [get]
func (h *AnalyticsHandler) Areas(c *gin.Context) {
	limit, err := queryInt(c, "limit", service.DefaultAreaLimit)
	if err != nil {
		response.Error(c, err)
		return
	}
	areas, cacheHit, err := h.analytics.Areas(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.OK(c, areas)
}

// System godoc
// @Summary Runtime instrumentation snapshot
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AnalyticsSystemMetrics
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	response.OK(c, h.analytics.System())
}

// Export godoc
// @Summary Download complaints as CSV or PDF
// @Tags Analytics
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string true "csv or pdf"
// @Param status query string false "Status"
// @Param category query string false "Category"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Router /analytics/export [get]
func (h *AnalyticsHandler) Export(c *gin.Context) {
	official, ok := currentOfficial(c)
	if !ok {
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Export(c.Request.Context(), official, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
