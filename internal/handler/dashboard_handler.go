package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-complaint-api/internal/dto"
	"github.com/noah-isme/civic-complaint-api/internal/middleware"
	"github.com/noah-isme/civic-complaint-api/internal/models"
	"github.com/noah-isme/civic-complaint-api/pkg/response"
)

type dashboardService interface {
	Citizen(ctx context.Context, citizen models.Citizen) (*dto.CitizenDashboardResponse, error)
	Government(ctx context.Context, official models.Official) (*dto.GovernmentDashboardResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Citizen godoc
// @Summary Citizen dashboard
// @Tags Citizen
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CitizenDashboardResponse
// @Router /citizen/dashboard [get]
func (h *DashboardHandler) Citizen(c *gin.Context) {
	citizen, ok := currentCitizen(c)
	if !ok {
		return
	}
	summary, err := h.service.Citizen(c.Request.Context(), citizen)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// Government godoc
// @Summary Government dashboard
// @Tags Government
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.GovernmentDashboardResponse
// @Router /government/dashboard [get]
func (h *DashboardHandler) Government(c *gin.Context) {
	official, ok := currentOfficial(c)
	if !ok {
		return
	}
	summary, cacheHit, err := h.service.Government(c.Request.Context(), official)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.OK(c, summary)
}
