package dto

import "github.com/noah-isme/civic-complaint-api/internal/models"

// CitizenDashboardResponse summarises a citizen's own complaints.
type CitizenDashboardResponse struct {
	Stats            models.ComplaintStats `json:"stats"`
	RecentComplaints []models.Complaint    `json:"recentComplaints"`
}

// GovernmentDashboardStats holds global counts plus the caller's assignments.
type GovernmentDashboardStats struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	Verified     int `json:"verified"`
	InProgress   int `json:"inProgress"`
	Resolved     int `json:"resolved"`
	AssignedToMe int `json:"assignedToMe"`
}

// GovernmentDashboardResponse is the officials' overview.
type GovernmentDashboardResponse struct {
	Stats             GovernmentDashboardStats `json:"stats"`
	RecentComplaints  []models.Complaint       `json:"recentComplaints"`
	CategoryBreakdown []models.CategoryCount   `json:"categoryBreakdown"`
}

// UserResponse wraps a user profile.
type UserResponse struct {
	User *models.User `json:"user"`
}
