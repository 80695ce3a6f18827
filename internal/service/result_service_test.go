package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/aula-planner/internal/models"
	"github.com/noah-isme/aula-planner/internal/repository"
	appErrors "github.com/noah-isme/aula-planner/pkg/errors"
)

func newResultServiceForTest(t *testing.T) (*ResultService, *MetricsService) {
	t.Helper()
	metrics := NewMetricsService()
	cache := NewCacheService(repository.NewMemoryCacheRepository(), metrics, time.Hour, zap.NewNop(), true)
	svc := NewResultService(cache, time.Hour, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 14, 30, 0, 0, time.UTC) }
	return svc, metrics
}

func TestResultServiceArchiveAndGet(t *testing.T) {
	svc, _ := newResultServiceForTest(t)
	ctx := context.Background()
	req := models.SolveRequest{
		Classrooms: []models.ClassroomRecord{{Name: "A1", Capacity: 30}},
		Groups:     []models.GroupRecord{{Name: "G1", Size: 25}},
		Slots:      []models.SlotRecord{{Label: "08:00-10:00"}},
		Parameters: models.Parameters{Delta: 0.1, Lambda: 2},
	}

	id, err := svc.Archive(ctx, "session-1", req, *successResponse())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "session-1", got.SessionID)
	assert.Equal(t, req, got.Request)
	assert.Equal(t, "OPTIMAL", got.Response.Status)
	require.NotNil(t, got.Response.ObjectiveValue)
	assert.InDelta(t, 12.345, *got.Response.ObjectiveValue, 1e-9)
	assert.Equal(t, time.Date(2024, 5, 2, 14, 30, 0, 0, time.UTC), got.ReceivedAt)

	require.NoError(t, svc.Forget(ctx, id))
	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, appErrors.ErrResultNotFound)
}

func TestResultServiceMissing(t *testing.T) {
	svc, _ := newResultServiceForTest(t)
	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrResultNotFound)
	assert.NoError(t, svc.Forget(context.Background(), ""))
}

func TestResultServiceDisabledCache(t *testing.T) {
	cache := NewCacheService(nil, nil, time.Hour, nil, false)
	svc := NewResultService(cache, time.Hour, nil)

	_, err := svc.Archive(context.Background(), "s", models.SolveRequest{}, models.SolveResponse{})
	assert.Error(t, err)
	_, err = svc.Get(context.Background(), "x")
	assert.ErrorIs(t, err, appErrors.ErrResultNotFound)
}
