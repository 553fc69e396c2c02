package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-complaint-api/internal/models"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
)

type mockAnalyticsRepo struct {
	stats         map[string]models.ComplaintStats
	assigned      map[string]int
	statuses      []models.StatusCount
	categories    []models.CategoryCount
	daily         []models.DailyCount
	areas         []models.AreaCount
	exportRows    []models.Complaint
	dailySince    time.Time
	areaLimit     int
	exportFilter  models.ExportFilter
	statusCalls   int
	categoryCalls int
	err           error
}

func (m *mockAnalyticsRepo) Stats(ctx context.Context, authorID string) (models.ComplaintStats, error) {
	if m.err != nil {
		return models.ComplaintStats{}, m.err
	}
	return m.stats[authorID], nil
}

func (m *mockAnalyticsRepo) CountAssigned(ctx context.Context, officialID string) (int, error) {
	return m.assigned[officialID], m.err
}

func (m *mockAnalyticsRepo) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	m.statusCalls++
	return m.statuses, m.err
}

func (m *mockAnalyticsRepo) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	m.categoryCalls++
	return m.categories, m.err
}

func (m *mockAnalyticsRepo) DailyCounts(ctx context.Context, since time.Time) ([]models.DailyCount, error) {
	m.dailySince = since
	return m.daily, m.err
}

func (m *mockAnalyticsRepo) TopAreas(ctx context.Context, limit int) ([]models.AreaCount, error) {
	m.areaLimit = limit
	return m.areas, m.err
}

func (m *mockAnalyticsRepo) ExportRows(ctx context.Context, filter models.ExportFilter) ([]models.Complaint, error) {
	m.exportFilter = filter
	rows := m.exportRows
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}
	return rows, m.err
}

type stubCacheRepo struct {
	store       map[string][]byte
	invalidated []string
	getErr      error
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.invalidated = append(s.invalidated, pattern)
	s.store = nil
	return nil
}

func newAnalyticsServiceForTest(repo *mockAnalyticsRepo, cacheRepo *stubCacheRepo) *AnalyticsService {
	var cache *CacheService
	if cacheRepo != nil {
		cache = NewCacheService(cacheRepo, NewMetricsService(), time.Minute, zap.NewNop(), true)
	}
	svc := NewAnalyticsService(repo, cache, NewMetricsService(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 18, 45, 0, 0, time.UTC) }
	return svc
}

func TestAnalyticsTrendsZeroFillsChronologically(t *testing.T) {
	repo := &mockAnalyticsRepo{daily: []models.DailyCount{
		{Day: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), Count: 3},
		{Day: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), Count: 1},
	}}
	svc := newAnalyticsServiceForTest(repo, nil)

	resp, cached, err := svc.Trends(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 5, resp.Days)
	assert.Equal(t, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), repo.dailySince)
	assert.Equal(t, []models.DailyCount{
		{Date: "2026-03-06", Count: 0},
		{Date: "2026-03-07", Count: 0},
		{Date: "2026-03-08", Count: 3},
		{Date: "2026-03-09", Count: 0},
		{Date: "2026-03-10", Count: 1},
	}, resp.Trends)
}

func TestAnalyticsTrendsExactLength(t *testing.T) {
	svc := newAnalyticsServiceForTest(&mockAnalyticsRepo{}, nil)
	for _, days := range []int{1, 7, 30, 365} {
		resp, _, err := svc.Trends(context.Background(), days)
		require.NoError(t, err)
		assert.Len(t, resp.Trends, days)
	}
}

func TestAnalyticsTrendsRejectsOutOfRange(t *testing.T) {
	svc := newAnalyticsServiceForTest(&mockAnalyticsRepo{}, nil)
	for _, days := range []int{0, -3, 366} {
		_, _, err := svc.Trends(context.Background(), days)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), "days=%d", days)
	}
}

func TestAnalyticsCategoriesOmitZeroCounts(t *testing.T) {
	repo := &mockAnalyticsRepo{categories: []models.CategoryCount{
		{Category: models.CategoryWaterSupply, Count: 4},
		{Category: models.CategoryParks, Count: 0},
		{Category: models.CategoryHealth, Count: 1},
	}}
	svc := newAnalyticsServiceForTest(repo, nil)

	resp, _, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryCount{
		{Category: models.CategoryWaterSupply, Count: 4},
		{Category: models.CategoryHealth, Count: 1},
	}, resp.Categories)
}

func TestAnalyticsStatusesIncludeZeros(t *testing.T) {
	repo := &mockAnalyticsRepo{statuses: []models.StatusCount{{Status: models.StatusResolved, Count: 2}}}
	svc := newAnalyticsServiceForTest(repo, nil)

	resp, _, err := svc.Statuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.StatusCount{
		{Status: models.StatusPending, Count: 0},
		{Status: models.StatusVerified, Count: 0},
		{Status: models.StatusInProgress, Count: 0},
		{Status: models.StatusResolved, Count: 2},
	}, resp.Statuses)
}

func TestAnalyticsAreasClampLimit(t *testing.T) {
	repo := &mockAnalyticsRepo{}
	svc := newAnalyticsServiceForTest(repo, nil)

	resp, _, err := svc.Areas(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultAreaLimit, repo.areaLimit)
	assert.NotNil(t, resp.Areas)

	_, _, err = svc.Areas(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, MaxAreaLimit, repo.areaLimit)
}

func TestAnalyticsServesFromCacheUntilInvalidated(t *testing.T) {
	repo := &mockAnalyticsRepo{statuses: []models.StatusCount{{Status: models.StatusPending, Count: 1}}}
	cacheRepo := &stubCacheRepo{}
	svc := newAnalyticsServiceForTest(repo, cacheRepo)

	_, cached, err := svc.Statuses(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	resp, cached, err := svc.Statuses(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, repo.statusCalls)
	assert.Equal(t, 1, resp.Statuses[0].Count)

	require.NoError(t, svc.cache.Invalidate(context.Background(), analyticsCachePattern))
	_, cached, err = svc.Statuses(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, repo.statusCalls)
}

func TestAnalyticsCacheFailureFallsBackToRepository(t *testing.T) {
	repo := &mockAnalyticsRepo{categories: []models.CategoryCount{{Category: models.CategoryHealth, Count: 1}}}
	svc := newAnalyticsServiceForTest(repo, &stubCacheRepo{getErr: errors.New("redis down")})

	resp, cached, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, resp.Categories, 1)
}

func TestAnalyticsRepositoryErrorIsInternal(t *testing.T) {
	svc := newAnalyticsServiceForTest(&mockAnalyticsRepo{err: errors.New("boom")}, nil)
	_, _, err := svc.Statuses(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAnalyticsSystemSnapshot(t *testing.T) {
	svc := newAnalyticsServiceForTest(&mockAnalyticsRepo{}, nil)
	svc.metrics.ObserveHTTPRequest("GET", "/api/analytics/status", 200, 20*time.Millisecond)
	svc.metrics.RecordCacheOperation(true, time.Millisecond)
	svc.metrics.RecordCacheOperation(false, time.Millisecond)

	snapshot := svc.System()
	assert.Equal(t, uint64(1), snapshot.RequestsTotal)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 0.0001)
	assert.False(t, snapshot.GeneratedAt.IsZero())
}
