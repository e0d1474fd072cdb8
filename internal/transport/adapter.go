package transport

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harpiadesk/harpia/internal/deck"
	"github.com/harpiadesk/harpia/internal/logging"
	"github.com/harpiadesk/harpia/internal/protocol"
	"github.com/harpiadesk/harpia/internal/store"
)

// Handlers receive the inbound events that do not belong in the store.
// Nil handlers are skipped.
type Handlers struct {
	OnStatus   func(protocol.ServiceStatus)
	OnActivity func(protocol.Activity)
}

// Adapter normalizes inbound socket events into store updates.
type Adapter struct {
	store    *store.Store
	handlers Handlers
}

// NewAdapter creates an adapter feeding s.
func NewAdapter(s *store.Store, h Handlers) *Adapter {
	return &Adapter{store: s, handlers: h}
}

// Apply handles one inbound envelope. Unknown events are ignored.
func (a *Adapter) Apply(env protocol.Envelope) error {
	switch env.Event {
	case protocol.EventDeckUpdated:
		cfg, err := deck.Parse(env.Data)
		if err != nil {
			return fmt.Errorf("malformed %s payload: %w", env.Event, err)
		}
		a.store.UpdateDeckConfig(cfg)

	case protocol.EventSceneDetails:
		var details protocol.SceneDetails
		if err := env.DecodeData(&details); err != nil {
			return err
		}
		a.store.Set(store.KeyScenes, details.Scenes)
		a.store.Set(store.KeyAudioInputs, details.AudioInputs)

	case protocol.EventAvatarHotkeys:
		var data protocol.AvatarHotkeys
		if err := env.DecodeData(&data); err != nil {
			return err
		}
		a.store.Set(store.KeyAvatarHotkeys, data.Hotkeys)

	case protocol.EventOBSStatus, protocol.EventVTSStatus:
		status := protocol.ServiceStatus{Service: protocol.ServiceOBS}
		if env.Event == protocol.EventVTSStatus {
			status.Service = protocol.ServiceVTS
		}
		if err := env.DecodeData(&status); err != nil {
			return err
		}
		if a.handlers.OnStatus != nil {
			a.handlers.OnStatus(status)
		}

	case protocol.EventActivity:
		var activity protocol.Activity
		if err := env.DecodeData(&activity); err != nil {
			return err
		}
		if a.handlers.OnActivity != nil {
			a.handlers.OnActivity(activity)
		}

	default:
		logging.Debug("Ignoring unknown socket event", zap.String("event", env.Event))
	}
	return nil
}

// Run applies events from conn until the connection ends or ctx is done.
// Malformed payloads are logged and skipped. It returns the connection's
// terminal error.
func (a *Adapter) Run(ctx context.Context, conn *Conn) error {
	for {
		select {
		case env, ok := <-conn.Events():
			if !ok {
				return conn.Err()
			}
			if err := a.Apply(env); err != nil {
				logging.Warn("Failed to apply socket event",
					zap.String("event", env.Event),
					zap.Error(err),
				)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
