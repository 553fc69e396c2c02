package service

import (
	"strings"
	"time"

	"github.com/noah-isme/civic-complaint-api/internal/models"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
)

// ParseStatusFilter converts an optional query value into a status filter.
func ParseStatusFilter(raw string) (*models.ComplaintStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	status := models.ComplaintStatus(strings.ToLower(raw))
	if !status.Valid() {
		return nil, appErrors.WithField("status", "Status must be one of pending, verified, in_progress, resolved")
	}
	return &status, nil
}

// ParseCategoryFilter converts an optional query value into a category filter.
func ParseCategoryFilter(raw string) (*models.ComplaintCategory, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	category := models.ComplaintCategory(strings.ToLower(raw))
	if !category.Valid() {
		return nil, appErrors.WithField("category", "Invalid category")
	}
	return &category, nil
}

// ParsePriorityFilter converts an optional query value into a priority filter.
func ParsePriorityFilter(raw string) (*models.ComplaintPriority, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	priority := models.ComplaintPriority(strings.ToLower(raw))
	if !priority.Valid() {
		return nil, appErrors.WithField("priority", "Priority must be one of low, medium, high, critical")
	}
	return &priority, nil
}

// ParseDateFilter accepts YYYY-MM-DD or RFC3339. A bare date used as an upper bound
// covers the whole day.
func ParseDateFilter(field, raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dayLayout, raw)
	if err != nil {
		return nil, appErrors.WithField(field, field+" must be a date (YYYY-MM-DD)")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
