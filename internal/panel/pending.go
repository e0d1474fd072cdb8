package panel

import (
	"errors"
	"sync"
)

// ErrBusy is returned when the same control already has a request in
// flight.
var ErrBusy = errors.New("operation already in progress")

// Pending tracks controls that have a request in flight.
type Pending struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

// NewPending creates an empty tracker.
func NewPending() *Pending {
	return &Pending{busy: make(map[string]struct{})}
}

// Begin marks key busy. It reports false when key is already busy.
func (p *Pending) Begin(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.busy[key]; ok {
		return false
	}
	p.busy[key] = struct{}{}
	return true
}

// End releases key.
func (p *Pending) End(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.busy, key)
}

// Busy reports whether key is in flight.
func (p *Pending) Busy(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.busy[key]
	return ok
}

// Any reports whether any control is in flight.
func (p *Pending) Any() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.busy) > 0
}

// Guard runs fn with key marked busy and always releases it.
func (p *Pending) Guard(key string, fn func() error) error {
	if !p.Begin(key) {
		return ErrBusy
	}
	defer p.End(key)
	return fn()
}
