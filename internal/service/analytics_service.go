package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-complaint-api/internal/dto"
	"github.com/noah-isme/civic-complaint-api/internal/models"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
)

// Analytics window limits.
const (
	DefaultTrendDays = 30
	MaxTrendDays     = 365
	DefaultAreaLimit = 10
	MaxAreaLimit     = 50
)

const dayLayout = "2006-01-02"

// AnalyticsRepository describes the aggregate queries required by AnalyticsService.
type AnalyticsRepository interface {
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
	DailyCounts(ctx context.Context, since time.Time) ([]models.DailyCount, error)
	TopAreas(ctx context.Context, limit int) ([]models.AreaCount, error)
}

// AnalyticsService provides read-optimised access to complaint aggregates with cache integration.
// Every method reports whether the result came from cache.
type AnalyticsService struct {
	repo    AnalyticsRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo AnalyticsRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Trends returns exactly days entries, one per UTC calendar day ending today, oldest first.
// Days without complaints are reported with a zero count.
func (s *AnalyticsService) Trends(ctx context.Context, days int) (*dto.TrendsResponse, bool, error) {
	if days < 1 || days > MaxTrendDays {
		return nil, false, appErrors.WithField("days", fmt.Sprintf("days must be between 1 and %d", MaxTrendDays))
	}
	today := truncateDay(s.now())
	since := today.AddDate(0, 0, -(days - 1))

	return remember(ctx, s.cache, analyticsKey("trends", days, today.Format(dayLayout)), func(ctx context.Context) (*dto.TrendsResponse, error) {
		start := time.Now()
		rows, err := s.repo.DailyCounts(ctx, since)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trends")
		}
		s.metrics.ObserveDBQuery("analytics_trends", time.Since(start))
		return &dto.TrendsResponse{Days: days, Trends: fillDays(since, days, rows)}, nil
	})
}

// Categories returns non-zero counts per category, largest first.
func (s *AnalyticsService) Categories(ctx context.Context) (*dto.CategoriesResponse, bool, error) {
	return remember(ctx, s.cache, analyticsKey("categories"), func(ctx context.Context) (*dto.CategoriesResponse, error) {
		start := time.Now()
		rows, err := s.repo.CountByCategory(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category breakdown")
		}
		s.metrics.ObserveDBQuery("analytics_categories", time.Since(start))

		out := make([]models.CategoryCount, 0, len(rows))
		for _, row := range rows {
			if row.Count > 0 && row.Category.Valid() {
				out = append(out, row)
			}
		}
		return &dto.CategoriesResponse{Categories: out}, nil
	})
}

// Statuses returns a count for each of the four statuses in workflow order, zeros included.
func (s *AnalyticsService) Statuses(ctx context.Context) (*dto.StatusResponse, bool, error) {
	return remember(ctx, s.cache, analyticsKey("status"), func(ctx context.Context) (*dto.StatusResponse, error) {
		start := time.Now()
		rows, err := s.repo.CountByStatus(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load status breakdown")
		}
		s.metrics.ObserveDBQuery("analytics_status", time.Since(start))

		counts := make(map[models.ComplaintStatus]int, len(rows))
		for _, row := range rows {
			counts[row.Status] = row.Count
		}
		out := make([]models.StatusCount, 0, len(models.AllStatuses))
		for _, status := range models.AllStatuses {
			out = append(out, models.StatusCount{Status: status, Count: counts[status]})
		}
		return &dto.StatusResponse{Statuses: out}, nil
	})
}

// Areas returns the busiest addresses. limit is clamped to 1..50, 0 selects the default.
func (s *AnalyticsService) Areas(ctx context.Context, limit int) (*dto.AreasResponse, bool, error) {
	if limit <= 0 {
		limit = DefaultAreaLimit
	}
	if limit > MaxAreaLimit {
		limit = MaxAreaLimit
	}
	return remember(ctx, s.cache, analyticsKey("areas", limit), func(ctx context.Context) (*dto.AreasResponse, error) {
		start := time.Now()
		rows, err := s.repo.TopAreas(ctx, limit)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load areas")
		}
		s.metrics.ObserveDBQuery("analytics_areas", time.Since(start))
		if rows == nil {
			rows = []models.AreaCount{}
		}
		return &dto.AreasResponse{Areas: rows}, nil
	})
}

// System returns the in-process instrumentation snapshot.
func (s *AnalyticsService) System() models.AnalyticsSystemMetrics {
	snapshot := s.metrics.Snapshot()
	if snapshot.GeneratedAt.IsZero() {
		snapshot.GeneratedAt = s.now()
	}
	return snapshot
}

func fillDays(since time.Time, days int, rows []models.DailyCount) []models.DailyCount {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Day.UTC().Format(dayLayout)] += row.Count
	}
	out := make([]models.DailyCount, 0, days)
	for i := 0; i < days; i++ {
		date := since.AddDate(0, 0, i).Format(dayLayout)
		out = append(out, models.DailyCount{Date: date, Count: counts[date]})
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
