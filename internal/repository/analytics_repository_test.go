package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-complaint-api/internal/models"
)

func TestStatsScopedToAuthor(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	rows := sqlmock.NewRows([]string{"total", "pending", "verified", "in_progress", "resolved", "reward_points"}).
		AddRow(4, 1, 1, 1, 1, 42)
	mock.ExpectQuery("FROM complaints WHERE author_id = \\$1").WithArgs("citizen-1").WillReturnRows(rows)

	stats, err := repo.Stats(context.Background(), "citizen-1")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 42, stats.RewardPoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByCategory(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	rows := sqlmock.NewRows([]string{"category", "count"}).
		AddRow("sanitation", 7).
		AddRow("engineering", 3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT category, COUNT(*) AS count FROM complaints GROUP BY category")).WillReturnRows(rows)

	counts, err := repo.CountByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, models.CategorySanitation, counts[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	since := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"day", "count"}).AddRow(since, 2)
	mock.ExpectQuery("date_trunc\\('day'").WithArgs(since).WillReturnRows(rows)

	counts, err := repo.DailyCounts(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 2, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopAreas(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	rows := sqlmock.NewRows([]string{"address", "count", "latitude", "longitude"}).AddRow("5th Ave", 3, 12.9, 77.6)
	mock.ExpectQuery("GROUP BY address").WithArgs(10).WillReturnRows(rows)

	areas, err := repo.TopAreas(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, "5th Ave", areas[0].Address)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportRowsAppliesFiltersAndLimit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	status := models.StatusResolved
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(complaintSelect + " WHERE c.status = $1 ORDER BY c.created_at DESC LIMIT 100")).
		WithArgs(status).
		WillReturnRows(complaintRow(sqlmock.NewRows(complaintRowColumns), "c1", now))

	rows, err := repo.ExportRows(context.Background(), models.ExportFilter{Status: &status, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
