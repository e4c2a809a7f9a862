package panel

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/metrics"
)

// Defaults for session limits.
const (
	DefaultIdleTimeout = 30 * time.Minute
	DefaultMaxSessions = 10000
)

// Config bounds the session registry.
type Config struct {
	IdleTimeout time.Duration
	MaxSessions int
}

// RendererFactory creates the renderer of a new panel.
type RendererFactory func() Renderer

// Service owns the panels of all sessions.
type Service struct {
	deps        Deps
	newRenderer RendererFactory
	cfg         Config
	logger      *zap.Logger
	now         func() time.Time

	mu     sync.Mutex
	panels map[string]*Panel
}

// NewService creates a session registry. Schema fetches of concurrently created
// panels are shared.
func NewService(deps Deps, newRenderer RendererFactory, cfg Config, logger *zap.Logger) *Service {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	deps.Schema = newDedupSource(deps.Schema)
	return &Service{
		deps:        deps,
		newRenderer: newRenderer,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		panels:      make(map[string]*Panel),
	}
}

// Create starts a new session and loads its controls. A schema failure leaves the
// panel without controls; the session is still usable for a later reload.
func (s *Service) Create(ctx context.Context) *Panel {
	return s.start(ctx, uuid.NewString())
}

// Resume returns the live panel of session id or, when it has been evicted, starts a
// fresh panel under the same id so state persisted for the session (the bench counter)
// is picked up again. Ids that are not UUIDs are rejected with ErrSessionNotFound.
func (s *Service) Resume(ctx context.Context, id string) (*Panel, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: malformed id", domain.ErrSessionNotFound)
	}
	if p, err := s.Get(id); err == nil {
		return p, nil
	}
	return s.start(ctx, id), nil
}

func (s *Service) start(ctx context.Context, id string) *Panel {
	var r Renderer
	if s.newRenderer != nil {
		r = s.newRenderer()
	}
	p := newPanel(id, s.deps, r, s.logger, s.now)
	if err := p.Load(ctx); err != nil {
		s.logger.Warn("Session created without facets",
			zap.String("session", id), zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if live, ok := s.panels[id]; ok {
		return live
	}
	s.evictOverflow()
	s.panels[id] = p
	metrics.SessionsActive.Set(float64(len(s.panels)))
	return p
}

// Get returns the panel of session id.
func (s *Service) Get(id string) (*Panel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.panels[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return p, nil
}

// Len returns the number of live sessions.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.panels)
}

// Sweep evicts sessions idle for longer than the idle timeout and returns how many were removed.
func (s *Service) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, p := range s.panels {
		if now.Sub(p.LastSeen()) > s.cfg.IdleTimeout {
			delete(s.panels, id)
			removed++
		}
	}
	metrics.SessionsActive.Set(float64(len(s.panels)))
	if removed > 0 {
		s.logger.Debug("Evicted idle sessions", zap.Int("count", removed))
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.now())
		}
	}
}

// evictOverflow drops the least recently used sessions so one more fits. Must hold mu.
func (s *Service) evictOverflow() {
	over := len(s.panels) - s.cfg.MaxSessions + 1
	if over <= 0 {
		return
	}

	type seen struct {
		id string
		at time.Time
	}
	all := make([]seen, 0, len(s.panels))
	for id, p := range s.panels {
		all = append(all, seen{id: id, at: p.LastSeen()})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })
	for _, e := range all[:over] {
		delete(s.panels, e.id)
	}
	s.logger.Warn("Session limit reached, evicted oldest", zap.Int("count", over))
}
