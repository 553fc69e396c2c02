package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshotAverages(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/complaints", 200, 10*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/complaints", 200, 30*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveDBQuery("complaints.list", 4*time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 20, snap.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(2), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 2.0/3.0, snap.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(1), snap.DBQueryCount)
	assert.InDelta(t, 4, snap.AverageDBQueryDurationMs, 0.001)
	assert.Positive(t, snap.Goroutines)
}

func TestMetricsComplaintCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordComplaintEvent("submitted", "pending")
	m.RecordComplaintEvent("submitted", "pending")
	m.RecordExport("csv", 42)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.complaintEvents.WithLabelValues("submitted", "pending")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.exportRows.WithLabelValues("csv")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "civic_complaints_events_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/x", 200, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	assert.Zero(t, m.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
