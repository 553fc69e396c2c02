package dto

import (
	"github.com/noah-isme/civic-complaint-api/internal/models"
	"github.com/noah-isme/civic-complaint-api/pkg/response"
)

// ImageUpload is a complaint photo read from a multipart request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SubmitComplaintRequest carries a citizen submission.
type SubmitComplaintRequest struct {
	Title       string                   `json:"title" validate:"required,min=5,max=200"`
	Description string                   `json:"description" validate:"required,min=10,max=1000"`
	Category    models.ComplaintCategory `json:"category" validate:"required,oneof=engineering health education water_supply sanitation electricity transport revenue parks"`
	Priority    models.ComplaintPriority `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Location    *models.LocationInput    `json:"location"`
	IsAnonymous bool                     `json:"isAnonymous"`
	Tags        []string                 `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
	Image       *ImageUpload             `json:"-"`
}

// UpdateStatusRequest moves a complaint to a new status.
type UpdateStatusRequest struct {
	Status          models.ComplaintStatus `json:"status" validate:"required"`
	ResolutionNotes *string                `json:"resolutionNotes" validate:"omitempty,max=1000"`
}

// AssignRequest sets or clears (null) the assignee.
type AssignRequest struct {
	AssignedTo *string `json:"assignedTo"`
}

// ComplaintResponse wraps a single complaint.
type ComplaintResponse struct {
	Complaint *models.Complaint `json:"complaint"`
}

// ComplaintMessageResponse wraps a complaint together with a human-readable message.
type ComplaintMessageResponse struct {
	Message   string            `json:"message"`
	Complaint *models.Complaint `json:"complaint"`
}

// ComplaintListResponse is a page of complaints.
type ComplaintListResponse struct {
	Complaints []models.Complaint   `json:"complaints"`
	Pagination *response.Pagination `json:"pagination"`
}

// StatusHistoryResponse lists the transitions of a complaint.
type StatusHistoryResponse struct {
	History []models.ComplaintStatusHistory `json:"history"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
