package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/harpiadesk/harpia/internal/api"
	"github.com/harpiadesk/harpia/internal/live"
	"github.com/harpiadesk/harpia/internal/logging"
	"github.com/harpiadesk/harpia/internal/panel"
	"github.com/harpiadesk/harpia/internal/protocol"
	"github.com/harpiadesk/harpia/internal/render"
)

// Messages for async operations
type (
	renderMsg         []render.SlotView
	statusMsg         protocol.ServiceStatus
	activityMsg       protocol.Activity
	sessionExpiredMsg struct{ err error }

	loadedMsg    struct{ err error }
	connectedMsg struct {
		done <-chan error
		err  error
	}
	socketClosedMsg struct{ err error }
	redialMsg       struct{}

	statsMsg     live.Stats
	statsTickMsg struct{}
	clockTickMsg time.Time
	channelMsg   struct {
		info *api.ChannelInfo
		err  error
	}

	pressedMsg struct{ res panel.PressResult }
	opDoneMsg  struct {
		op  string
		err error
	}
)

// bridge forwards panel callbacks into the program in order without ever
// blocking the caller, which may be running inside Update.
type bridge struct {
	msgs chan tea.Msg
	once sync.Once
	stop chan struct{}
}

func newBridge() *bridge {
	return &bridge{msgs: make(chan tea.Msg, 256), stop: make(chan struct{})}
}

// Send queues msg for the program.
func (b *bridge) Send(msg tea.Msg) {
	select {
	case b.msgs <- msg:
	default:
		logging.Warn("UI message queue full, dropping message", zap.String("type", typeName(msg)))
	}
}

func (b *bridge) run(p *tea.Program) {
	for {
		select {
		case msg := <-b.msgs:
			p.Send(msg)
		case <-b.stop:
			return
		}
	}
}

func (b *bridge) close() {
	b.once.Do(func() { close(b.stop) })
}

// panelOptions routes panel callbacks through the bridge.
func (b *bridge) panelOptions() panel.Options {
	return panel.Options{
		OnRender:         func(v []render.SlotView) { b.Send(renderMsg(v)) },
		OnStatus:         func(s protocol.ServiceStatus) { b.Send(statusMsg(s)) },
		OnActivity:       func(a protocol.Activity) { b.Send(activityMsg(a)) },
		OnSessionExpired: func(err error) { b.Send(sessionExpiredMsg{err: err}) },
	}
}

func typeName(msg tea.Msg) string {
	switch msg.(type) {
	case renderMsg:
		return "render"
	case statusMsg:
		return "status"
	case activityMsg:
		return "activity"
	case sessionExpiredMsg:
		return "session_expired"
	default:
		return "other"
	}
}
