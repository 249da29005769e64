package services

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resumeai/internal/repositories"
	"alfredoptarigan/resumeai/internal/wizard"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many active sessions")
	ErrManagerStopped  = errors.New("session manager stopped")
)

// Session is one hosted demo wizard.
type Session struct {
	ID         uuid.UUID
	Controller *wizard.Controller
	CreatedAt  time.Time

	lastSeen time.Time
	recorder *RunRecorder
}

type SessionManager interface {
	Start(ctx context.Context)
	Stop()
	Create() (*Session, error)
	Get(id uuid.UUID) (*Session, error)
	Delete(id uuid.UUID) error
	Sweep() int
	Len() int
}

type SessionOptions struct {
	TTL           time.Duration
	SweepInterval time.Duration
	MaxSessions   int
	Timing        wizard.Timing
	// Scheduler and Random default to wall-clock timers and a time seeded
	// source.
	Scheduler wizard.Scheduler
	Random    wizard.RandomSource
	// Now defaults to time.Now.
	Now func() time.Time
}

type sessionManager struct {
	content *wizard.Content
	runs    repositories.DemoRunRepository
	metrics *Metrics
	opts    SessionOptions
	log     *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	stopped  bool

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewSessionManager hosts wizard sessions. runs and metrics may be nil.
func NewSessionManager(
	content *wizard.Content,
	runs repositories.DemoRunRepository,
	metrics *Metrics,
	opts SessionOptions,
) SessionManager {
	if opts.Scheduler == nil {
		opts.Scheduler = wizard.RealScheduler()
	}
	if opts.Random == nil {
		opts.Random = wizard.NewRandomSource(time.Now().UnixNano())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	return &sessionManager{
		content:  content,
		runs:     runs,
		metrics:  metrics,
		opts:     opts,
		log:      zap.S().Named("sessions"),
		sessions: make(map[uuid.UUID]*Session),
		stopChan: make(chan struct{}),
	}
}

// Start launches the idle session sweeper.
func (m *sessionManager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.sweepIdle(ctx)
	m.log.Infow("Session manager started", "ttl", m.opts.TTL, "max_sessions", m.opts.MaxSessions)
}

// Stop ends the sweeper and closes every session.
func (m *sessionManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
	m.wg.Wait()

	m.mu.Lock()
	m.stopped = true
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		m.closeSession(s)
	}
	m.log.Infow("Session manager stopped", "closed", len(sessions))
}

func (m *sessionManager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return nil, ErrManagerStopped
	}
	if m.opts.MaxSessions > 0 && len(m.sessions) >= m.opts.MaxSessions {
		return nil, ErrTooManySessions
	}

	id := uuid.New()
	now := m.opts.Now()
	opts := []wizard.Option{
		wizard.WithScheduler(m.opts.Scheduler),
		wizard.WithRandomSource(m.opts.Random),
		wizard.WithTiming(m.opts.Timing),
		wizard.WithLogger(m.log.With("session", id)),
	}

	s := &Session{ID: id, CreatedAt: now, lastSeen: now}
	if m.runs != nil {
		s.recorder = NewRunRecorder(m.runs, id)
		opts = append(opts, wizard.WithObserver(s.recorder))
	}
	if m.metrics != nil {
		opts = append(opts, wizard.WithObserver(m.metrics))
		m.metrics.SessionsCreated.Inc()
		m.metrics.SessionsActive.Inc()
	}
	s.Controller = wizard.NewController(m.content, opts...)

	m.sessions[id] = s
	return s, nil
}

// Get returns a session and marks it as used.
func (m *sessionManager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = m.opts.Now()
	return s, nil
}

func (m *sessionManager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	m.closeSession(s)
	return nil
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were dropped.
func (m *sessionManager) Sweep() int {
	if m.opts.TTL <= 0 {
		return 0
	}
	cutoff := m.opts.Now().Add(-m.opts.TTL)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		m.closeSession(s)
		if m.metrics != nil {
			m.metrics.SessionsEvicted.Inc()
		}
	}
	return len(expired)
}

func (m *sessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *sessionManager) closeSession(s *Session) {
	s.Controller.Close()
	if s.recorder != nil {
		s.recorder.Close()
	}
	if m.metrics != nil {
		m.metrics.SessionsActive.Dec()
	}
}

func (m *sessionManager) sweepIdle(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.log.Infow("Evicted idle sessions", "count", n)
			}
		}
	}
}
