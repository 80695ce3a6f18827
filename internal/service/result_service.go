package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/aula-planner/internal/models"
	appErrors "github.com/noah-isme/aula-planner/pkg/errors"
)

const resultKeyPrefix = "aula:result:"

// ResultService archives successful solver results so they can be exported later.
type ResultService struct {
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewResultService constructs a ResultService.
func NewResultService(cache *CacheService, ttl time.Duration, logger *zap.Logger) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func resultKey(id string) string {
	return resultKeyPrefix + id
}

// Archive stores a successful response together with the request that produced it.
func (s *ResultService) Archive(ctx context.Context, sessionID string, req models.SolveRequest, resp models.SolveResponse) (string, error) {
	if !s.cache.Enabled() {
		return "", fmt.Errorf("result archive disabled")
	}
	record := models.ArchivedResult{
		ID:         s.newID(),
		SessionID:  sessionID,
		Request:    req,
		Response:   resp,
		ReceivedAt: s.now().UTC(),
	}
	if err := s.cache.Set(ctx, resultKey(record.ID), record, s.ttl); err != nil {
		return "", fmt.Errorf("archive result: %w", err)
	}
	s.logger.Debug("result archived", zap.String("result_id", record.ID), zap.String("session_id", sessionID))
	return record.ID, nil
}

// Get loads an archived result.
func (s *ResultService) Get(ctx context.Context, id string) (*models.ArchivedResult, error) {
	var record models.ArchivedResult
	hit, err := s.cache.Get(ctx, resultKey(id), &record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}
	if !hit {
		return nil, appErrors.Clone(appErrors.ErrResultNotFound, "")
	}
	return &record, nil
}

// Forget drops an archived result.
func (s *ResultService) Forget(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.cache.Invalidate(ctx, resultKey(id))
}
