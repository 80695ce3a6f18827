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

func TestMetricsServiceRecordsDomainMetrics(t *testing.T) {
	m := NewMetricsService()

	m.RecordSubmission("SUCCESS")
	m.RecordSubmission("SUCCESS")
	m.RecordSubmission("FAILURE")
	m.ObserveSolverCall("success", 150*time.Millisecond)
	m.SetActiveSessions(3)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/sessions/:id/solve", http.StatusAccepted, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("SUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("FAILURE")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeSessions))
	assert.Equal(t, 1, testutil.CollectAndCount(m.solverDuration))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "form_submissions_total")
	assert.Contains(t, rec.Body.String(), "solver_call_duration_seconds")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordSubmission("SUCCESS")
		m.ObserveSolverCall("success", time.Second)
		m.SetActiveSessions(1)
		m.RecordCacheOperation(true, time.Millisecond)
		m.ObserveCacheWrite(time.Millisecond)
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
