package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-complaint-api/internal/dto"
	"github.com/noah-isme/civic-complaint-api/internal/models"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
	"github.com/noah-isme/civic-complaint-api/pkg/response"
)

// multipartOverhead is the allowance for form fields on top of the image itself.
const multipartOverhead = 1 << 20

type complaintService interface {
	Submit(ctx context.Context, citizen models.Citizen, req dto.SubmitComplaintRequest) (*models.Complaint, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Complaint, error)
	List(ctx context.Context, official models.Official, filter models.ComplaintFilter) (*dto.ComplaintListResponse, error)
	ListForCitizen(ctx context.Context, citizen models.Citizen, filter models.ComplaintFilter) (*dto.ComplaintListResponse, error)
	ListAssigned(ctx context.Context, official models.Official, filter models.ComplaintFilter) (*dto.ComplaintListResponse, error)
	TransitionStatus(ctx context.Context, actor models.Actor, id string, req dto.UpdateStatusRequest) (*models.Complaint, error)
	Assign(ctx context.Context, actor models.Actor, id string, req dto.AssignRequest) (*models.Complaint, error)
	Remove(ctx context.Context, actor models.Actor, id string) error
	History(ctx context.Context, actor models.Actor, id string) ([]models.ComplaintStatusHistory, error)
}

// ComplaintHandler exposes the complaint workflow over HTTP.
type ComplaintHandler struct {
	service       complaintService
	maxImageBytes int64
}

// NewComplaintHandler constructs the handler. maxImageBytes bounds uploaded photos.
func NewComplaintHandler(svc complaintService, maxImageBytes int64) *ComplaintHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = 5 << 20
	}
	return &ComplaintHandler{service: svc, maxImageBytes: maxImageBytes}
}

// Submit godoc
// @Summary Submit a complaint
// @Description Accepts multipart/form-data (location as a JSON string, optional image file) or JSON.
// @Tags Complaints
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param category formData string true "Category"
// @Param priority formData string false "Priority"
// @Param location formData string true "Location JSON {latitude, longitude, address}"
// @Param isAnonymous formData bool false "Hide author from officials"
// @Param image formData file false "Photo"
// @Success 201 {object} dto.ComplaintMessageResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /complaints [post]
func (h *ComplaintHandler) Submit(c *gin.Context) {
	citizen, ok := currentCitizen(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImageBytes+multipartOverhead)

	var req dto.SubmitComplaintRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		parsed, err := h.parseMultipart(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		req = parsed
	} else if !bindJSON(c, &req) {
		return
	}

	complaint, err := h.service.Submit(c.Request.Context(), citizen, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ComplaintMessageResponse{Message: "Complaint submitted successfully", Complaint: complaint})
}

func (h *ComplaintHandler) parseMultipart(c *gin.Context) (dto.SubmitComplaintRequest, error) {
	var req dto.SubmitComplaintRequest
	if err := c.Request.ParseMultipartForm(h.maxImageBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, appErrors.WithField("image", "Image must be 5MB or smaller")
		}
		return req, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid multipart form")
	}

	req.Title = c.PostForm("title")
	req.Description = c.PostForm("description")
	req.Category = models.ComplaintCategory(strings.ToLower(strings.TrimSpace(c.PostForm("category"))))
	req.Priority = models.ComplaintPriority(strings.ToLower(strings.TrimSpace(c.PostForm("priority"))))

	if raw := strings.TrimSpace(c.PostForm("location")); raw != "" {
		var loc models.LocationInput
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			return req, appErrors.WithField("location", "Location must be a JSON object with latitude, longitude and address")
		}
		req.Location = &loc
	}

	if raw := strings.TrimSpace(c.PostForm("isAnonymous")); raw != "" {
		anonymous, err := strconv.ParseBool(raw)
		if err != nil {
			return req, appErrors.WithField("isAnonymous", "isAnonymous must be true or false")
		}
		req.IsAnonymous = anonymous
	}

	for _, value := range c.PostFormArray("tags") {
		for _, tag := range strings.Split(value, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.Tags = append(req.Tags, tag)
			}
		}
	}

	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return req, nil
		}
		return req, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid image upload")
	}
	image, err := h.readImage(file)
	if err != nil {
		return req, err
	}
	req.Image = image
	return req, nil
}

func (h *ComplaintHandler) readImage(file *multipart.FileHeader) (*dto.ImageUpload, error) {
	if file.Size > h.maxImageBytes {
		return nil, appErrors.WithField("image", "Image must be 5MB or smaller")
	}
	src, err := file.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrImageUpload.Code, appErrors.ErrImageUpload.Status, appErrors.ErrImageUpload.Message)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxImageBytes+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrImageUpload.Code, appErrors.ErrImageUpload.Status, appErrors.ErrImageUpload.Message)
	}
	contentType := file.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &dto.ImageUpload{Filename: file.Filename, ContentType: contentType, Data: data}, nil
}

// Get godoc
// @Summary Get a complaint
// @Tags Complaints
// @Produce json
// @Security BearerAuth
// @Param id path string true "Complaint ID"
// @Success 200 {object} dto.ComplaintResponse
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /complaints/{id} [get]
func (h *ComplaintHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	complaint, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ComplaintResponse{Complaint: complaint})
}

// List godoc
// @Summary List all complaints
// @Tags Complaints
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Param status query string false "Status"
// @Param category query string false "Category"
// @Param priority query string false "Priority"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {object} dto.ComplaintListResponse
// @Router /complaints [get]
func (h *ComplaintHandler) List(c *gin.Context) {
	official, ok := currentOfficial(c)
	if !ok {
		return
	}
	filter, err := complaintFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.service.List(c.Request.Context(), official, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, page)
}

// ListMine godoc
// @Summary List the caller's complaints
// @Tags Citizen
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Param status query string false "Status"
// @Success 200 {object} dto.ComplaintListResponse
// @Router /citizen/complaints [get]
func (h *ComplaintHandler) ListMine(c *gin.Context) {
	citizen, ok := currentCitizen(c)
	if !ok {
		return
	}
	filter, err := complaintFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.service.ListForCitizen(c.Request.Context(), citizen, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, page)
}

// ListAssigned godoc
// @Summary List complaints assigned to the caller
// @Tags Government
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Param status query string false "Status"
// @Success 200 {object} dto.ComplaintListResponse
// @Router /government/assigned-complaints [get]
func (h *ComplaintHandler) ListAssigned(c *gin.Context) {
	official, ok := currentOfficial(c)
	if !ok {
		return
	}
	filter, err := complaintFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.service.ListAssigned(c.Request.Context(), official, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, page)
}

// UpdateStatus godoc
// @Summary Change complaint status
// @Description Any status may follow any other. in_progress assigns the caller; resolved stamps resolvedAt.
// @Tags Complaints
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Complaint ID"
// @Param payload body dto.UpdateStatusRequest true "New status"
// @Success 200 {object} dto.ComplaintMessageResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /complaints/{id}/status [patch]
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Status = models.ComplaintStatus(strings.ToLower(strings.TrimSpace(string(req.Status))))

	complaint, err := h.service.TransitionStatus(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ComplaintMessageResponse{Message: "Complaint status updated successfully", Complaint: complaint})
}

// Assign godoc
// @Summary Assign or unassign a complaint
// @Tags Complaints
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Complaint ID"
// @Param payload body dto.AssignRequest true "Assignee (null clears)"
// @Success 200 {object} dto.ComplaintMessageResponse
// @Failure 404 {object} response.ErrorBody
// @Router /complaints/{id}/assign [patch]
func (h *ComplaintHandler) Assign(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.AssignRequest
	if !bindJSON(c, &req) {
		return
	}
	complaint, err := h.service.Assign(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ComplaintMessageResponse{Message: "Complaint assigned successfully", Complaint: complaint})
}

// Delete godoc
// @Summary Delete own complaint
// @Tags Complaints
// @Produce json
// @Security BearerAuth
// @Param id path string true "Complaint ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /complaints/{id} [delete]
func (h *ComplaintHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.MessageResponse{Message: "Complaint deleted successfully"})
}

// History godoc
// @Summary Status history of a complaint
// @Tags Complaints
// @Produce json
// @Security BearerAuth
// @Param id path string true "Complaint ID"
// @Success 200 {object} dto.StatusHistoryResponse
// @Router /complaints/{id}/history [get]
func (h *ComplaintHandler) History(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	history, err := h.service.History(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.StatusHistoryResponse{History: history})
}
