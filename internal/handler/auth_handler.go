package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-complaint-api/internal/middleware"
	"github.com/noah-isme/civic-complaint-api/internal/models"
	"github.com/noah-isme/civic-complaint-api/pkg/response"
)

type authService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error)
	Verify(ctx context.Context, token string) (*models.AuthResult, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// RegisterCitizen godoc
// @Summary Register a citizen
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Citizen profile"
// @Success 201 {object} models.AuthResult
// @Failure 400 {object} response.ErrorBody
// @Router /auth/register/citizen [post]
func (h *AuthHandler) RegisterCitizen(c *gin.Context) {
	h.register(c, models.RoleCitizen)
}

// RegisterGovernment godoc
// @Summary Register a government official
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Official profile"
// @Success 201 {object} models.AuthResult
// @Failure 400 {object} response.ErrorBody
// @Router /auth/register/government [post]
func (h *AuthHandler) RegisterGovernment(c *gin.Context) {
	h.register(c, models.RoleGovernment)
}

func (h *AuthHandler) register(c *gin.Context, role models.UserRole) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Role = role
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate user by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} models.AuthResult
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Verify godoc
// @Summary Verify a bearer token
// @Description Re-checks the account and returns the user with a fresh token
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AuthResult
// @Failure 401 {object} response.ErrorBody
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	token, err := middleware.BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.service.Verify(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
