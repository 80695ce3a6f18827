package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/aula-planner/internal/form"
	appErrors "github.com/noah-isme/aula-planner/pkg/errors"
)

// SessionConfig seeds new sessions and controls their expiry.
type SessionConfig struct {
	DefaultFloors int
	DefaultDelta  float64
	DefaultLambda float64
	TTL           time.Duration
}

// SessionService keeps the live form sessions in memory.
type SessionService struct {
	cfg     SessionConfig
	deps    SubmissionDeps
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
	storeID func() string

	mu       sync.RWMutex
	sessions map[string]*FormSession
}

// NewSessionService constructs a SessionService. deps is shared by every session's controller.
func NewSessionService(cfg SessionConfig, deps SubmissionDeps, logger *zap.Logger) *SessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Logger == nil {
		deps.Logger = logger
	}
	return &SessionService{
		cfg:      cfg,
		deps:     deps,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[string]*FormSession),
	}
}

// Create opens a new session seeded from the configured defaults.
func (s *SessionService) Create(_ context.Context) *FormSession {
	id := s.newID()
	var opts []form.Option
	if s.storeID != nil {
		opts = append(opts, form.WithIDGenerator(s.storeID))
	}
	store := form.NewStore(s.cfg.DefaultFloors, s.cfg.DefaultDelta, s.cfg.DefaultLambda, opts...)
	session := newFormSession(id, store, NewSubmissionController(id, s.deps), s.now(), s.logger)

	s.mu.Lock()
	s.sessions[id] = session
	count := len(s.sessions)
	s.mu.Unlock()

	s.deps.Metrics.SetActiveSessions(count)
	s.logger.Info("form session created", zap.String("session_id", id))
	return session
}

// Get returns a live session and marks it as used.
func (s *SessionService) Get(id string) (*FormSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrSessionNotFound, "")
	}
	now := s.now()
	if now.Sub(session.idleSince()) > s.cfg.TTL && !session.Busy() {
		s.remove(context.Background(), id)
		return nil, appErrors.Clone(appErrors.ErrSessionNotFound, "")
	}
	session.touch(now)
	return session, nil
}

// Delete drops a session and its archived result.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if !s.remove(ctx, id) {
		return appErrors.Clone(appErrors.ErrSessionNotFound, "")
	}
	return nil
}

func (s *SessionService) remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.deps.Metrics.SetActiveSessions(count)
	if s.deps.Archive != nil {
		if err := s.deps.Archive.Forget(ctx, session.submit.LastResultID()); err != nil {
			s.logger.Warn("failed to drop session result", zap.String("session_id", id), zap.Error(err))
		}
	}
	return true
}

// Count reports the number of live sessions.
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep expires idle sessions. Sessions with a solver call in flight are kept.
func (s *SessionService) Sweep(ctx context.Context) int {
	now := s.now()
	s.mu.RLock()
	var expired []string
	for id, session := range s.sessions {
		if now.Sub(session.idleSince()) > s.cfg.TTL && !session.Busy() {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	removed := 0
	for _, id := range expired {
		if s.remove(ctx, id) {
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("expired form sessions", zap.Int("count", removed))
	}
	return removed
}

// RunSweeper sweeps on every tick until ctx ends.
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}
