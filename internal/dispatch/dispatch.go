// Package dispatch turns a button press into outbound intents.
package dispatch

import (
	"sync"

	"go.uber.org/zap"

	"github.com/harpiadesk/harpia/internal/deck"
	"github.com/harpiadesk/harpia/internal/logging"
	"github.com/harpiadesk/harpia/internal/protocol"
	"github.com/harpiadesk/harpia/internal/store"
)

// Emitter sends an intent to the backend.
type Emitter interface {
	Emit(intent protocol.Intent) error
}

// Dispatcher resolves which actions a press runs and emits one intent per
// action. Intents are fire-and-forget: emit failures are logged and never
// retried.
type Dispatcher struct {
	store *store.Store

	mu      sync.RWMutex
	emitter Emitter
}

// New creates a dispatcher. A nil emitter drops socket intents, which is
// useful while the socket is down.
func New(s *store.Store, emitter Emitter) *Dispatcher {
	return &Dispatcher{store: s, emitter: emitter}
}

// SetEmitter replaces the emitter used for socket intents.
func (d *Dispatcher) SetEmitter(emitter Emitter) {
	d.mu.Lock()
	d.emitter = emitter
	d.mu.Unlock()
}

// Resolve returns the actions a press of cfg runs and updates the toggle
// state of stateful buttons. Non-stateful buttons never read ActionsOff.
func (d *Dispatcher) Resolve(cfg deck.ButtonConfig, slot deck.SlotID) []deck.Action {
	if !cfg.IsStateful {
		return cfg.ActionsOn
	}
	if wasOn := d.store.Toggle(slot); wasOn {
		return cfg.ActionsOff
	}
	return cfg.ActionsOn
}

// Execute runs a press of the button at slot and returns the intents it
// produced, in action order.
func (d *Dispatcher) Execute(cfg deck.ButtonConfig, slot deck.SlotID) []protocol.Intent {
	actions := d.Resolve(cfg, slot)

	intents := make([]protocol.Intent, 0, len(actions))
	for i, action := range actions {
		intent, ok := protocol.FromAction(action)
		if !ok {
			logging.Warn("Skipping unknown action kind",
				zap.String("slot", slot),
				zap.Int("index", i),
				zap.String("type", string(action.Type)),
			)
			continue
		}

		intents = append(intents, intent)
		d.run(slot, intent)
	}
	return intents
}

func (d *Dispatcher) run(slot deck.SlotID, intent protocol.Intent) {
	if intent.Local() {
		nav, _ := intent.Data.(protocol.NavigateRequest)
		logging.Info("Opening deck",
			zap.String("slot", slot),
			zap.String("deck", nav.DeckID),
		)
		d.store.Navigate(nav.DeckID)
		return
	}

	logging.Info("Intent dispatched",
		zap.String("slot", slot),
		zap.String("event", intent.Event),
	)

	d.mu.RLock()
	emitter := d.emitter
	d.mu.RUnlock()

	if emitter == nil {
		logging.Warn("No socket connection, intent dropped",
			zap.String("event", intent.Event),
		)
		return
	}
	if err := emitter.Emit(intent); err != nil {
		logging.Warn("Failed to emit intent",
			zap.String("event", intent.Event),
			zap.Error(err),
		)
	}
}
