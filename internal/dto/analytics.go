package dto

import "github.com/noah-isme/civic-complaint-api/internal/models"

// TrendsResponse lists daily complaint counts, oldest first.
type TrendsResponse struct {
	Days   int                 `json:"days"`
	Trends []models.DailyCount `json:"trends"`
}

// CategoriesResponse lists non-zero category counts.
type CategoriesResponse struct {
	Categories []models.CategoryCount `json:"categories"`
}

// StatusResponse lists a count for every status.
type StatusResponse struct {
	Statuses []models.StatusCount `json:"statuses"`
}

// AreasResponse lists the busiest addresses.
type AreasResponse struct {
	Areas []models.AreaCount `json:"areas"`
}

// ExportQuery narrows an export request.
type ExportQuery struct {
	Format    string `form:"format"`
	Status    string `form:"status"`
	Category  string `form:"category"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}
