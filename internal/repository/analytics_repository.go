package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/civic-complaint-api/internal/models"
)

// AnalyticsRepository exposes read-optimised aggregate queries over complaints.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Stats returns status counts and summed reward points. An empty authorID covers all complaints.
func (r *AnalyticsRepository) Stats(ctx context.Context, authorID string) (models.ComplaintStats, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT COUNT(*) AS total,
        COUNT(*) FILTER (WHERE status = 'pending') AS pending,
        COUNT(*) FILTER (WHERE status = 'verified') AS verified,
        COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress,
        COUNT(*) FILTER (WHERE status = 'resolved') AS resolved,
        COALESCE(SUM(reward_points), 0) AS reward_points
        FROM complaints`)
	var args []interface{}
	if authorID != "" {
		args = append(args, authorID)
		builder.WriteString(" WHERE author_id = $1")
	}

	var stats models.ComplaintStats
	if err := r.db.GetContext(ctx, &stats, builder.String(), args...); err != nil {
		return models.ComplaintStats{}, fmt.Errorf("query complaint stats: %w", err)
	}
	return stats, nil
}

// CountAssigned returns how many complaints are assigned to the official.
func (r *AnalyticsRepository) CountAssigned(ctx context.Context, officialID string) (int, error) {
	const query = `SELECT COUNT(*) FROM complaints WHERE assigned_to = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, officialID); err != nil {
		return 0, fmt.Errorf("count assigned complaints: %w", err)
	}
	return total, nil
}

// CountByStatus groups all complaints by status. Statuses without complaints are absent.
func (r *AnalyticsRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM complaints GROUP BY status`
	rows := make([]models.StatusCount, 0)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count complaints by status: %w", err)
	}
	return rows, nil
}

// CountByCategory groups all complaints by category, largest first.
func (r *AnalyticsRepository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	const query = `SELECT category, COUNT(*) AS count FROM complaints GROUP BY category ORDER BY count DESC, category ASC`
	rows := make([]models.CategoryCount, 0)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count complaints by category: %w", err)
	}
	return rows, nil
}

// DailyCounts returns per-day creation counts from since (inclusive). Days without complaints are absent.
func (r *AnalyticsRepository) DailyCounts(ctx context.Context, since time.Time) ([]models.DailyCount, error) {
	const query = `SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, COUNT(*) AS count FROM complaints WHERE created_at >= $1 GROUP BY day ORDER BY day ASC`
	rows := make([]models.DailyCount, 0)
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("count complaints per day: %w", err)
	}
	return rows, nil
}

// TopAreas groups complaints by address, busiest first.
func (r *AnalyticsRepository) TopAreas(ctx context.Context, limit int) ([]models.AreaCount, error) {
	const query = `SELECT address, COUNT(*) AS count, AVG(latitude) AS latitude, AVG(longitude) AS longitude FROM complaints GROUP BY address ORDER BY count DESC, address ASC LIMIT $1`
	rows := make([]models.AreaCount, 0)
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("count complaints by area: %w", err)
	}
	return rows, nil
}

// ExportRows materialises complaints joined with author identity for export.
func (r *AnalyticsRepository) ExportRows(ctx context.Context, filter models.ExportFilter) ([]models.Complaint, error) {
	where, args := buildComplaintConditions(models.ComplaintFilter{
		Status:    filter.Status,
		Category:  filter.Category,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	})
	query := complaintSelect + where + " ORDER BY c.created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows := make([]models.Complaint, 0)
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query export rows: %w", err)
	}
	return rows, nil
}
