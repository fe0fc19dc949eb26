package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soyeahso/agentdesk/internal/domain"
	"github.com/soyeahso/agentdesk/internal/hooks"
	"github.com/soyeahso/agentdesk/internal/logging"
)

// DefaultReapInterval is how often Run looks for idle sessions.
const DefaultReapInterval = time.Minute

const archiveTimeout = 10 * time.Second

// AgentSource resolves an agent id to its descriptor.
type AgentSource interface {
	Lookup(id string) (domain.Agent, error)
}

// Archiver records the final state of a session once it has ended.
type Archiver interface {
	Archive(ctx context.Context, snap domain.Snapshot) error
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	IdleTimeout  time.Duration // 0 disables reaping
	ReapInterval time.Duration
	Options      []Option // applied to every controller the Manager starts
}

// Manager keeps the live sessions of a process, keyed by session id.
type Manager struct {
	agents   AgentSource
	cfg      ManagerConfig
	archiver Archiver
	hooks    *hooks.Manager
	root     *logging.Logger
	log      *logging.Logger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Controller
}

// NewManager creates a session manager.
func NewManager(agents AgentSource, cfg ManagerConfig, log *logging.Logger) *Manager {
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = DefaultReapInterval
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{
		agents:   agents,
		cfg:      cfg,
		root:     log,
		log:      log.Sub("sessions"),
		now:      time.Now,
		sessions: make(map[string]*Controller),
	}
}

// SetArchiver sets where ended sessions are recorded.
func (m *Manager) SetArchiver(a Archiver) { m.archiver = a }

// SetHooks sets the hook manager for session and response events.
func (m *Manager) SetHooks(h *hooks.Manager) { m.hooks = h }

// Start opens a new session with the agent identified by agentID.
func (m *Manager) Start(agentID string, opts ...Option) (*Controller, error) {
	agent, err := m.agents.Lookup(agentID)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	all := []Option{WithID(id), WithLogger(m.root), WithHooks(m.hooks)}
	all = append(all, m.cfg.Options...)
	all = append(all, opts...)
	all = append(all, OnBack(func() { m.finish(id) }))

	c := New(agent, all...)

	m.mu.Lock()
	m.sessions[id] = c
	m.mu.Unlock()

	m.emit(hooks.EventSessionStart, map[string]any{"sessionId": id, "agentId": agent.ID})
	return c, nil
}

// Get returns the live session with the given id.
func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// List returns snapshots of every live session, oldest first.
func (m *Manager) List() []domain.Snapshot {
	m.mu.RLock()
	ctrls := make([]*Controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		ctrls = append(ctrls, c)
	}
	m.mu.RUnlock()

	out := make([]domain.Snapshot, 0, len(ctrls))
	for _, c := range ctrls {
		out = append(out, c.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].SessionID < out[j].SessionID
	})
	return out
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close ends the session with the given id.
func (m *Manager) Close(id string) error {
	c, err := m.Get(id)
	if err != nil {
		return err
	}
	c.Back()
	return nil
}

// CloseAll ends every live session.
func (m *Manager) CloseAll() {
	for _, c := range m.controllers() {
		c.Back()
	}
}

// Reap closes sessions that have been idle for at least the configured
// idle timeout as of now. Sessions awaiting a response are left alone.
func (m *Manager) Reap(now time.Time) int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-m.cfg.IdleTimeout)
	n := 0
	for _, c := range m.controllers() {
		if c.closeIfIdleSince(cutoff) {
			m.log.Info().Str("sessionId", c.ID()).Msg("reaped idle session")
			n++
		}
	}
	return n
}

// Run reaps idle sessions on a ticker until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Reap(m.now()); n > 0 {
				m.log.Debug().Int("reaped", n).Int("live", m.Count()).Msg("reaper pass")
			}
		}
	}
}

func (m *Manager) controllers() []*Controller {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		out = append(out, c)
	}
	return out
}

// finish runs once per session after Back.
func (m *Manager) finish(id string) {
	m.mu.Lock()
	c, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return
	}

	snap := c.Snapshot()
	if m.archiver != nil {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		if err := m.archiver.Archive(ctx, snap); err != nil {
			m.log.Error().Err(err).Str("sessionId", id).Msg("failed to archive session")
		}
		cancel()
	}

	m.emit(hooks.EventSessionEnd, map[string]any{
		"sessionId": id,
		"agentId":   snap.Agent.ID,
		"messages":  len(snap.Timeline),
	})
	m.log.Info().Str("sessionId", id).Int("messages", len(snap.Timeline)).Msg("session ended")
}

func (m *Manager) emit(event string, data map[string]any) {
	if m.hooks == nil {
		return
	}
	m.hooks.Emit(context.Background(), event, data)
}
