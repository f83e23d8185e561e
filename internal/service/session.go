package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"healthfirst/internal/calendar"
	"healthfirst/internal/domain"
	"healthfirst/internal/metrics"
	"healthfirst/internal/repository"
)

// Session is one provider's working state: the slot store, the calendar
// position the provider is looking at, and saved templates.
type Session struct {
	ProviderID int64
	Store      *repository.SlotStore
	grids      *calendar.GridCache

	mu        sync.Mutex
	view      domain.ViewMode
	date      time.Time
	templates map[string]domain.AvailabilityTemplate
}

func (s *Session) Position() (domain.ViewMode, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view, s.date
}

func (s *Session) SetPosition(view domain.ViewMode, date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
	s.date = calendar.Civil(date)
}

func (s *Session) AddTemplate(t domain.AvailabilityTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.ID] = t
}

func (s *Session) Template(id string) (domain.AvailabilityTemplate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	return t, ok
}

func (s *Session) RemoveTemplate(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return false
	}
	delete(s.templates, id)
	return true
}

func (s *Session) Templates() []domain.AvailabilityTemplate {
	s.mu.Lock()
	out := make([]domain.AvailabilityTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SessionManager keeps a bounded set of provider sessions. A session that
// falls out of the cache is rebuilt from the slot repository on next use
// when one is configured; otherwise its slots are gone.
type SessionManager struct {
	mu            sync.Mutex
	sessions      *lru.Cache[int64, *Session]
	repo          repository.SlotRepository
	gridCacheSize int
	now           func() time.Time
	metrics       *metrics.AvailabilityMetrics
	logger        *zap.Logger
}

func NewSessionManager(
	size, gridCacheSize int,
	repo repository.SlotRepository,
	now func() time.Time,
	m *metrics.AvailabilityMetrics,
	logger *zap.Logger,
) (*SessionManager, error) {
	if now == nil {
		now = time.Now
	}
	manager := &SessionManager{
		repo:          repo,
		gridCacheSize: gridCacheSize,
		now:           now,
		metrics:       m,
		logger:        logger,
	}

	sessions, err := lru.NewWithEvict[int64, *Session](size, func(providerID int64, session *Session) {
		if repo == nil {
			logger.Warn("provider session evicted, in-memory slots discarded",
				zap.Int64("provider_id", providerID),
				zap.Int("slots", session.Store.Len()),
				zap.Int("session_cache_size", size))
			return
		}
		logger.Info("provider session evicted", zap.Int64("provider_id", providerID))
	})
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	manager.sessions = sessions
	return manager, nil
}

func (m *SessionManager) Get(ctx context.Context, providerID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions.Get(providerID); ok {
		return session, nil
	}

	grids, err := calendar.NewGridCache(m.gridCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create grid cache: %w", err)
	}

	session := &Session{
		ProviderID: providerID,
		Store:      repository.NewSlotStore(),
		grids:      grids,
		view:       domain.ViewWeek,
		date:       calendar.Civil(m.now()),
		templates:  make(map[string]domain.AvailabilityTemplate),
	}

	if m.repo != nil {
		slots, err := m.repo.ListByProvider(ctx, providerID)
		if err != nil {
			return nil, fmt.Errorf("load slots of provider %d: %w", providerID, err)
		}
		_, skipped, err := session.Store.InsertMany(slots)
		if err != nil {
			return nil, fmt.Errorf("load slots of provider %d: %w", providerID, err)
		}
		if len(skipped) > 0 {
			m.logger.Warn("skipped persisted slots with duplicate keys",
				zap.Int64("provider_id", providerID),
				zap.Strings("slot_ids", skipped))
		}
		m.logger.Debug("provider session loaded",
			zap.Int64("provider_id", providerID),
			zap.Int("slots", session.Store.Len()))
	}

	m.sessions.Add(providerID, session)
	m.metrics.SetOpenSessions(m.sessions.Len())
	return session, nil
}

func (m *SessionManager) Len() int {
	return m.sessions.Len()
}
