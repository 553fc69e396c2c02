package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-complaint-api/internal/dto"
	"github.com/noah-isme/civic-complaint-api/internal/models"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
)

const (
	citizenRecentLimit    = 5
	governmentRecentLimit = 10
)

type dashboardStatsRepository interface {
	Stats(ctx context.Context, authorID string) (models.ComplaintStats, error)
	CountAssigned(ctx context.Context, officialID string) (int, error)
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
}

type recentComplaintLister interface {
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error)
}

// DashboardService composes the citizen and government landing pages.
type DashboardService struct {
	stats      dashboardStatsRepository
	complaints recentComplaintLister
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(stats dashboardStatsRepository, complaints recentComplaintLister, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{stats: stats, complaints: complaints, cache: cache, metrics: metrics, logger: logger}
}

// Citizen returns the citizen's own counts, reward total and five most recent complaints.
func (s *DashboardService) Citizen(ctx context.Context, citizen models.Citizen) (*dto.CitizenDashboardResponse, error) {
	start := time.Now()
	stats, err := s.stats.Stats(ctx, citizen.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load citizen stats")
	}
	s.metrics.ObserveDBQuery("dashboard_citizen_stats", time.Since(start))

	recent, _, err := s.complaints.List(ctx, models.ComplaintFilter{AuthorID: citizen.ID, Page: 1, Limit: citizenRecentLimit})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent complaints")
	}

	return &dto.CitizenDashboardResponse{Stats: stats, RecentComplaints: nonNilComplaints(recent)}, nil
}

// Government returns global counts, the caller's assignment count, the ten newest complaints
// and the per-category breakdown. The bool reports a cache hit.
func (s *DashboardService) Government(ctx context.Context, official models.Official) (*dto.GovernmentDashboardResponse, bool, error) {
	resp, cached, err := remember(ctx, s.cache, dashboardKey("government", official.ID), func(ctx context.Context) (*dto.GovernmentDashboardResponse, error) {
		return s.loadGovernment(ctx, official)
	})
	if err != nil {
		return nil, false, err
	}
	return resp, cached, nil
}

func (s *DashboardService) loadGovernment(ctx context.Context, official models.Official) (*dto.GovernmentDashboardResponse, error) {
	start := time.Now()
	stats, err := s.stats.Stats(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint stats")
	}
	assigned, err := s.stats.CountAssigned(ctx, official.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count assigned complaints")
	}
	categories, err := s.stats.CountByCategory(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category breakdown")
	}
	s.metrics.ObserveDBQuery("dashboard_government_stats", time.Since(start))

	recent, _, err := s.complaints.List(ctx, models.ComplaintFilter{Page: 1, Limit: governmentRecentLimit})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent complaints")
	}
	for i := range recent {
		presentComplaint(official.Actor, &recent[i])
	}
	if categories == nil {
		categories = []models.CategoryCount{}
	}

	return &dto.GovernmentDashboardResponse{
		Stats: dto.GovernmentDashboardStats{
			Total:        stats.Total,
			Pending:      stats.Pending,
			Verified:     stats.Verified,
			InProgress:   stats.InProgress,
			Resolved:     stats.Resolved,
			AssignedToMe: assigned,
		},
		RecentComplaints:  nonNilComplaints(recent),
		CategoryBreakdown: categories,
	}, nil
}

func nonNilComplaints(items []models.Complaint) []models.Complaint {
	if items == nil {
		return []models.Complaint{}
	}
	return items
}
