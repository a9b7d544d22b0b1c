// Package session keeps one independent agent per conversation, the way each browser
// tab gets its own rate window and processing guard.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"restaurant-agent/internal/agent"
	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/common/metrics"
)

const DefaultIdleTTL = 30 * time.Minute

// Factory builds the agent for a new session.
type Factory func(id string) *agent.Agent

type entry struct {
	agent    *agent.Agent
	lastSeen time.Time
}

type Manager struct {
	mu      sync.Mutex
	agents  map[string]*entry
	factory Factory
	idleTTL time.Duration
	now     func() time.Time
	logger  logger.Logger
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(factory Factory, idleTTL time.Duration, log logger.Logger, opts ...Option) *Manager {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	m := &Manager{
		agents:  make(map[string]*entry),
		factory: factory,
		idleTTL: idleTTL,
		now:     time.Now,
		logger:  log.With(map[string]interface{}{"component": "session-manager"}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the agent for id, creating it on first use. An empty id starts a new
// session; the returned id is the one to reuse.
func (m *Manager) Get(id string) (string, *agent.Agent) {
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.agents[id]; ok {
		e.lastSeen = now
		return id, e.agent
	}
	a := m.factory(id)
	m.agents[id] = &entry{agent: a, lastSeen: now}
	metrics.AgentSessionsActive.Set(float64(len(m.agents)))
	m.logger.Debug("session created", map[string]interface{}{"session_id": id})
	return id, a
}

// Remove drops a session. It reports whether the session existed.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.agents[id]; !ok {
		return false
	}
	delete(m.agents, id)
	metrics.AgentSessionsActive.Set(float64(len(m.agents)))
	return true
}

// Sweep evicts sessions not fetched for longer than the TTL. Busy sessions are kept.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.idleTTL)
	evicted := 0
	for id, e := range m.agents {
		if e.agent.Busy() || e.lastSeen.After(cutoff) {
			continue
		}
		delete(m.agents, id)
		evicted++
	}
	if evicted > 0 {
		metrics.AgentSessionsActive.Set(float64(len(m.agents)))
		m.logger.Info("evicted idle sessions", map[string]interface{}{
			"evicted":   evicted,
			"remaining": len(m.agents),
		})
	}
	return evicted
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.agents)
}
