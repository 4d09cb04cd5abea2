package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "scheme-eligibility/internal/common/errors"
	"scheme-eligibility/internal/common/metrics"
)

// Store keeps live sessions in memory, keyed by a random id. Sessions idle
// for longer than the TTL are evicted by the sweeper.
type Store struct {
	deps   Deps
	ttl    time.Duration
	logger Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Controller
}

func NewStore(deps Deps, idleTTL time.Duration) *Store {
	return &Store{
		deps:     deps,
		ttl:      idleTTL,
		logger:   deps.Logger,
		now:      time.Now,
		sessions: make(map[string]*Controller),
	}
}

func (s *Store) Create() *Controller {
	id := uuid.NewString()
	c := NewController(id, s.deps)

	s.mu.Lock()
	s.sessions[id] = c
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	s.logger.Info("session created", map[string]interface{}{"sessionId": id})
	return c
}

func (s *Store) Get(id string) (*Controller, error) {
	s.mu.RLock()
	c, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewSessionNotFoundError(id)
	}
	return c, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return apperrors.NewSessionNotFoundError(id)
	}
	metrics.ActiveSessions.Set(float64(count))
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts idle sessions and returns how many were removed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var evicted []string
	for id, c := range s.sessions {
		if c.LastActive().Before(cutoff) {
			delete(s.sessions, id)
			evicted = append(evicted, id)
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	if len(evicted) > 0 {
		s.logger.Info("idle sessions evicted", map[string]interface{}{
			"evicted":   len(evicted),
			"remaining": count,
		})
	}
	return len(evicted)
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}
