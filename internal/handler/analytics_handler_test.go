package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-complaint-api/internal/dto"
	"github.com/noah-isme/civic-complaint-api/internal/middleware"
	"github.com/noah-isme/civic-complaint-api/internal/models"
	"github.com/noah-isme/civic-complaint-api/internal/service"
)

type fakeAnalyticsService struct {
	days  int
	limit int
	hit   bool
}

func (f *fakeAnalyticsService) Trends(_ context.Context, days int) (*dto.TrendsResponse, bool, error) {
	f.days = days
	return &dto.TrendsResponse{Days: days, Trends: []models.DailyCount{}}, f.hit, nil
}

func (f *fakeAnalyticsService) Categories(context.Context) (*dto.CategoriesResponse, bool, error) {
	return &dto.CategoriesResponse{Categories: []models.CategoryCount{}}, f.hit, nil
}

func (f *fakeAnalyticsService) Statuses(context.Context) (*dto.StatusResponse, bool, error) {
	return &dto.StatusResponse{Statuses: []models.StatusCount{}}, f.hit, nil
}

func (f *fakeAnalyticsService) Areas(_ context.Context, limit int) (*dto.AreasResponse, bool, error) {
	f.limit = limit
	return &dto.AreasResponse{Areas: []models.AreaCount{}}, f.hit, nil
}

func (f *fakeAnalyticsService) System() models.AnalyticsSystemMetrics {
	return models.AnalyticsSystemMetrics{RequestsTotal: 3, GeneratedAt: time.Now()}
}

type exportRowsStub struct {
	rows []models.Complaint
}

func (s exportRowsStub) ExportRows(context.Context, models.ExportFilter) ([]models.Complaint, error) {
	return s.rows, nil
}

func analyticsRouter(analytics *fakeAnalyticsService) http.Handler {
	rows := []models.Complaint{{
		ID:        "c-1",
		Title:     "Broken streetlight on 5th",
		Category:  models.CategoryEngineering,
		Status:    models.StatusPending,
		Priority:  models.PriorityMedium,
		Location:  models.Location{Latitude: 12.9, Longitude: 77.6, Address: "5th Ave"},
		Author:    &models.ComplaintPerson{Name: "Asha", Email: "asha@example.com"},
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
	exports := service.NewExportService(exportRowsStub{rows: rows}, nil, nil, nil, nil, zap.NewNop())
	h := NewAnalyticsHandler(analytics, exports)

	r := newTestRouter()
	api := r.Group("/api/analytics", asActor(officialActor), middleware.RequireOfficial())
	api.GET("/trends", h.Trends)
	api.GET("/categories", h.Categories)
	api.GET("/status", h.Status)
	api.GET("/areas", h.Areas)
	api.GET("/system", h.System)
	api.GET("/export", h.Export)
	return r
}

func TestExportRejectsXML(t *testing.T) {
	rec := httptest.NewRecorder()
	analyticsRouter(&fakeAnalyticsService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/export?format=xml", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid format. Use csv or pdf.", decodeError(t, rec).Error)
}

func TestExportCSVDownload(t *testing.T) {
	rec := httptest.NewRecorder()
	analyticsRouter(&fakeAnalyticsService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/export?format=csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment; filename=complaints_"))
	assert.Contains(t, rec.Body.String(), "Broken streetlight on 5th")
}

func TestExportPDFDownload(t *testing.T) {
	rec := httptest.NewRecorder()
	analyticsRouter(&fakeAnalyticsService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/export?format=pdf", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestTrendsDefaultsAndValidation(t *testing.T) {
	analytics := &fakeAnalyticsService{hit: true}
	rec := httptest.NewRecorder()
	analyticsRouter(analytics).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/trends", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.DefaultTrendDays, analytics.days)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	rec = httptest.NewRecorder()
	analyticsRouter(analytics).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/trends?days=week", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAreasPassesLimit(t *testing.T) {
	analytics := &fakeAnalyticsService{}
	rec := httptest.NewRecorder()
	analyticsRouter(analytics).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/areas?limit=25", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, analytics.limit)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestSystemSnapshot(t *testing.T) {
	rec := httptest.NewRecorder()
	analyticsRouter(&fakeAnalyticsService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/system", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"requestsTotal":3`)
}
