package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-complaint-api/internal/models"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
)

func TestDashboardCitizenComposesOwnStats(t *testing.T) {
	stats := &mockAnalyticsRepo{stats: map[string]models.ComplaintStats{
		testCitizen.ID: {Total: 3, Pending: 2, Resolved: 1, RewardPoints: 27},
	}}
	complaints := newMockComplaintRepo(storedComplaint("c-1", testCitizen.ID), storedComplaint("c-2", otherCitizen.ID))
	svc := NewDashboardService(stats, complaints, nil, nil, zap.NewNop())

	resp, err := svc.Citizen(context.Background(), mustCitizen(t, testCitizen))
	require.NoError(t, err)
	assert.Equal(t, 27, resp.Stats.RewardPoints)
	assert.Equal(t, 2, resp.Stats.Pending)
	require.Len(t, resp.RecentComplaints, 1)
	assert.Equal(t, testCitizen.ID, complaints.lastFilter.AuthorID)
	assert.Equal(t, citizenRecentLimit, complaints.lastFilter.Limit)
}

func TestDashboardGovernmentComposesAndCaches(t *testing.T) {
	anonymous := storedComplaint("c-2", otherCitizen.ID)
	anonymous.IsAnonymous = true
	stats := &mockAnalyticsRepo{
		stats:      map[string]models.ComplaintStats{"": {Total: 2, Pending: 1, InProgress: 1}},
		assigned:   map[string]int{testOfficial.ID: 1},
		categories: []models.CategoryCount{{Category: models.CategorySanitation, Count: 2}},
	}
	complaints := newMockComplaintRepo(storedComplaint("c-1", testCitizen.ID), anonymous)
	cacheRepo := &stubCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewDashboardService(stats, complaints, cache, NewMetricsService(), zap.NewNop())

	resp, cached, err := svc.Government(context.Background(), mustOfficial(t, testOfficial))
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, resp.Stats.Total)
	assert.Equal(t, 1, resp.Stats.AssignedToMe)
	assert.Equal(t, governmentRecentLimit, complaints.lastFilter.Limit)
	assert.Empty(t, complaints.lastFilter.AuthorID)
	require.Len(t, resp.CategoryBreakdown, 1)
	for _, c := range resp.RecentComplaints {
		if c.ID == "c-2" {
			assert.Nil(t, c.Author)
		}
	}

	_, cached, err = svc.Government(context.Background(), mustOfficial(t, testOfficial))
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Contains(t, cacheRepo.store, dashboardKey("government", testOfficial.ID))
}

func TestDashboardGovernmentEmptyCollections(t *testing.T) {
	svc := NewDashboardService(&mockAnalyticsRepo{}, newMockComplaintRepo(), nil, nil, nil)

	resp, _, err := svc.Government(context.Background(), mustOfficial(t, testOfficial))
	require.NoError(t, err)
	assert.NotNil(t, resp.RecentComplaints)
	assert.NotNil(t, resp.CategoryBreakdown)
}

func TestDashboardPropagatesRepositoryError(t *testing.T) {
	svc := NewDashboardService(&mockAnalyticsRepo{err: errors.New("db down")}, newMockComplaintRepo(), nil, nil, nil)

	_, err := svc.Citizen(context.Background(), mustCitizen(t, testCitizen))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
