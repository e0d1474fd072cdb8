package live

import (
	"sync"
	"time"

	"github.com/harpiadesk/harpia/internal/protocol"
)

// ReconnectCooldown is how long the manual reconnect stays disabled after
// use.
const ReconnectCooldown = 5 * time.Second

// ServiceState is the last known state of an upstream service.
type ServiceState struct {
	Service   protocol.Service
	Known     bool
	Connected bool
	Message   string
	// CooldownUntil disables reconnect until this time.
	CooldownUntil time.Time
}

// StatusBoard tracks the upstream services.
type StatusBoard struct {
	mu     sync.Mutex
	states map[protocol.Service]ServiceState
	now    Clock
}

// NewStatusBoard creates a board with every service unknown.
func NewStatusBoard() *StatusBoard {
	b := &StatusBoard{states: make(map[protocol.Service]ServiceState), now: time.Now}
	for _, s := range protocol.Services {
		b.states[s] = ServiceState{Service: s}
	}
	return b
}

// Update records a status report.
func (b *StatusBoard) Update(s protocol.ServiceStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.states[s.Service]
	st.Service = s.Service
	st.Known = true
	st.Connected = s.Connected
	st.Message = s.Message
	b.states[s.Service] = st
}

// Get returns the state of one service.
func (b *StatusBoard) Get(s protocol.Service) ServiceState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[s]
}

// All returns every service in display order.
func (b *StatusBoard) All() []ServiceState {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ServiceState, 0, len(protocol.Services))
	for _, s := range protocol.Services {
		out = append(out, b.states[s])
	}
	return out
}

// CanReconnect reports whether a manual reconnect is offered: the service
// is reported down and no cooldown is running.
func (b *StatusBoard) CanReconnect(s protocol.Service) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canReconnectLocked(s)
}

func (b *StatusBoard) canReconnectLocked(s protocol.Service) bool {
	st := b.states[s]
	return st.Known && !st.Connected && !b.now().Before(st.CooldownUntil)
}

// BeginReconnect starts the cooldown. It reports false, changing nothing,
// when reconnect is not currently offered.
func (b *StatusBoard) BeginReconnect(s protocol.Service) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.canReconnectLocked(s) {
		return false
	}
	st := b.states[s]
	st.CooldownUntil = b.now().Add(ReconnectCooldown)
	b.states[s] = st
	return true
}
