package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-complaint-api/internal/dto"
	"github.com/noah-isme/civic-complaint-api/internal/models"
	"github.com/noah-isme/civic-complaint-api/pkg/response"
)

type userService interface {
	UpdateProfile(ctx context.Context, actor models.Actor, update models.ProfileUpdate) (*models.User, error)
}

// UserHandler serves profile updates for both roles.
type UserHandler struct {
	service userService
}

// NewUserHandler constructs the handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// UpdateProfile godoc
// @Summary Update own profile
// @Description Name and mobile for everyone; department for officials only. Email and role cannot change.
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ProfileUpdate true "Profile fields"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} response.ErrorBody
// @Router /citizen/profile [put]
// @Router /government/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var update models.ProfileUpdate
	if !bindJSON(c, &update) {
		return
	}
	user, err := h.service.UpdateProfile(c.Request.Context(), actor, update)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.UserResponse{User: user})
}
