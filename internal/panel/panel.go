package panel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/harpiadesk/harpia/internal/api"
	"github.com/harpiadesk/harpia/internal/deck"
	"github.com/harpiadesk/harpia/internal/dispatch"
	"github.com/harpiadesk/harpia/internal/editor"
	"github.com/harpiadesk/harpia/internal/live"
	"github.com/harpiadesk/harpia/internal/logging"
	"github.com/harpiadesk/harpia/internal/protocol"
	"github.com/harpiadesk/harpia/internal/render"
	"github.com/harpiadesk/harpia/internal/store"
	"github.com/harpiadesk/harpia/internal/transport"
)

var (
	// ErrNoSocket is returned when an operation needs the socket and it is
	// down.
	ErrNoSocket = errors.New("socket not connected")
	// ErrCooldown is returned when a reconnect is requested during the
	// cooldown or while the service is up.
	ErrCooldown = errors.New("reconnect not available")
)

// Pending keys.
const (
	pendingUpload = "upload"
	pendingLayout = "layout"
)

func pendingSave(slot deck.SlotID) string   { return "save:" + slot }
func pendingDelete(slot deck.SlotID) string { return "delete:" + slot }

// Client is the REST surface the panel uses. *api.Client implements it.
type Client interface {
	DeckConfig(ctx context.Context) (*deck.Configuration, error)
	SaveButton(ctx context.Context, deckID deck.DeckID, slot deck.SlotID, cfg deck.ButtonConfig) error
	DeleteButton(ctx context.Context, deckID deck.DeckID, slot deck.SlotID) error
	SaveLayout(ctx context.Context, deckID deck.DeckID, buttons deck.Buttons) error
	UploadImage(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Socket is the dashboard socket. *transport.Conn implements it.
type Socket interface {
	dispatch.Emitter
	Reconnect(s protocol.Service) error
	RequestSnapshots() error
	Close() error
}

// Options configures a Panel. Every callback may be nil.
type Options struct {
	OnRender         func([]render.SlotView)
	OnStatus         func(protocol.ServiceStatus)
	OnActivity       func(protocol.Activity)
	OnSessionExpired func(error)
}

// Panel is the control panel core.
type Panel struct {
	store      *store.Store
	dispatcher *dispatch.Dispatcher
	renderer   *render.Renderer
	client     Client
	status     *live.StatusBoard
	feed       *live.Feed
	pending    *Pending
	opts       Options

	mu     sync.Mutex
	socket Socket
}

// New creates a panel over client. Until a socket is attached, intents are
// dropped with a warning.
func New(client Client, opts Options) *Panel {
	s := store.New()
	return &Panel{
		store:      s,
		dispatcher: dispatch.New(s, nil),
		renderer:   render.NewRenderer(s, opts.OnRender),
		client:     client,
		status:     live.NewStatusBoard(),
		feed:       live.NewFeed(),
		pending:    NewPending(),
		opts:       opts,
	}
}

// Store returns the panel's store.
func (p *Panel) Store() *store.Store { return p.store }

// Renderer returns the grid projection.
func (p *Panel) Renderer() *render.Renderer { return p.renderer }

// Status returns the upstream service board.
func (p *Panel) Status() *live.StatusBoard { return p.status }

// Feed returns the activity feed.
func (p *Panel) Feed() *live.Feed { return p.feed }

// Pending returns the in-flight request tracker.
func (p *Panel) Pending() *Pending { return p.pending }

// SlotBusy reports whether a save or delete of slot is in flight.
func (p *Panel) SlotBusy(slot deck.SlotID) bool {
	return p.pending.Busy(pendingSave(slot)) || p.pending.Busy(pendingDelete(slot))
}

// Load fetches the configuration and shows the start deck.
func (p *Panel) Load(ctx context.Context) error {
	cfg, err := p.client.DeckConfig(ctx)
	if err != nil {
		return p.fail("load configuration", err)
	}
	p.store.UpdateDeckConfig(cfg)

	start := cfg.Settings.StartDeck
	if start == "" {
		start = deck.RootDeck
	}
	if cfg.HasDeck(start) && start != p.store.CurrentDeck() {
		p.store.Navigate(start)
	}
	logging.Info("Deck configuration loaded",
		zap.Int("decks", len(cfg.Decks)),
		zap.String("deck", p.store.CurrentDeck()),
	)
	return nil
}

// Reload resets local state and loads again: normal mode, root deck.
func (p *Panel) Reload(ctx context.Context) error {
	if p.store.Mode() == store.ModeEdit {
		p.store.ToggleViewMode()
	}
	p.store.Navigate(deck.RootDeck)
	return p.Load(ctx)
}

// PressResult says what a press did.
type PressResult struct {
	Kind render.ClickKind
	Slot deck.SlotID
	// Form is set when the editor should open.
	Form *editor.FormModel
	// Intents lists what was dispatched.
	Intents []protocol.Intent
}

// Press handles a click on slot. In edit mode it returns the editor form;
// otherwise a configured button is dispatched.
func (p *Panel) Press(slot deck.SlotID) PressResult {
	idx, ok := deck.SlotIndex(slot)
	if !ok {
		return PressResult{Kind: render.ClickNoop, Slot: slot}
	}
	snap := p.store.Snapshot()
	view := render.RenderSnapshot(snap)[idx]
	res := PressResult{Kind: render.Click(view, snap.Mode), Slot: slot}

	cfg, configured := snap.Config.Deck(snap.CurrentDeck)[slot]
	switch res.Kind {
	case render.ClickOpenEditor:
		var form editor.FormModel
		if configured {
			form = editor.Build(&cfg)
		} else {
			form = editor.Build(nil)
		}
		res.Form = &form
	case render.ClickExecute:
		res.Intents = p.dispatcher.Execute(cfg, slot)
	}
	return res
}

// ToggleEditMode switches between normal and edit mode.
func (p *Panel) ToggleEditMode() store.ViewMode {
	return p.store.ToggleViewMode()
}

// EditorLive returns the picker data for the editor.
func (p *Panel) EditorLive() editor.Live {
	return editor.Live{
		Scenes:      p.store.Scenes(),
		AudioInputs: p.store.AudioInputs(),
		Hotkeys:     p.store.AvatarHotkeys(),
	}
}

// Save stores the form as the button at slot of the current deck.
func (p *Panel) Save(ctx context.Context, slot deck.SlotID, form editor.FormModel) error {
	deckID := p.store.CurrentDeck()
	cfg := editor.Read(form)
	return p.pending.Guard(pendingSave(slot), func() error {
		if err := p.client.SaveButton(ctx, deckID, slot, cfg); err != nil {
			return p.fail("save button", err)
		}
		logging.Info("Button saved", zap.String("deck", deckID), zap.String("slot", slot))
		return p.refreshWithoutSocket(ctx)
	})
}

// Delete removes the button at slot of the current deck.
func (p *Panel) Delete(ctx context.Context, slot deck.SlotID) error {
	deckID := p.store.CurrentDeck()
	return p.pending.Guard(pendingDelete(slot), func() error {
		if err := p.client.DeleteButton(ctx, deckID, slot); err != nil {
			return p.fail("delete button", err)
		}
		logging.Info("Button deleted", zap.String("deck", deckID), zap.String("slot", slot))
		return p.refreshWithoutSocket(ctx)
	})
}

// Upload sends an icon image and returns its URL.
func (p *Panel) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var url string
	err := p.pending.Guard(pendingUpload, func() error {
		var err error
		url, err = p.client.UploadImage(ctx, filename, r)
		if err != nil {
			return p.fail("upload image", err)
		}
		return nil
	})
	return url, err
}

// Reorder rewrites the current deck so that position i holds the content
// of order[i], then saves the layout.
func (p *Panel) Reorder(ctx context.Context, order []deck.SlotID) error {
	return p.pending.Guard(pendingLayout, func() error {
		cfg := p.store.Config().Clone()
		if cfg.Decks == nil {
			cfg.Decks = make(map[deck.DeckID]deck.Buttons)
		}
		deckID := p.store.CurrentDeck()
		buttons := deck.Reorder(cfg.Deck(deckID), order)
		cfg.Decks[deckID] = buttons
		p.store.UpdateDeckConfig(cfg)

		if err := p.client.SaveLayout(ctx, deckID, buttons.Clone()); err != nil {
			return p.fail("save layout", err)
		}
		return nil
	})
}

// Move swaps the contents of two slots of the current deck.
func (p *Panel) Move(ctx context.Context, from, to deck.SlotID) error {
	fi, ok1 := deck.SlotIndex(from)
	ti, ok2 := deck.SlotIndex(to)
	if !ok1 || !ok2 {
		return fmt.Errorf("invalid move %s -> %s", from, to)
	}
	order := deck.Slots()
	order[fi], order[ti] = order[ti], order[fi]
	return p.Reorder(ctx, order)
}

// Attach makes sock the socket for intents and requests fresh snapshots.
func (p *Panel) Attach(sock Socket) {
	p.mu.Lock()
	p.socket = sock
	p.mu.Unlock()
	p.dispatcher.SetEmitter(sock)

	if err := sock.RequestSnapshots(); err != nil {
		logging.Warn("Failed to request snapshots", zap.Error(err))
	}
}

// Detach forgets the socket if it is still sock.
func (p *Panel) Detach(sock Socket) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.socket != sock {
		return
	}
	p.socket = nil
	p.dispatcher.SetEmitter(nil)
}

// Connected reports whether a socket is attached.
func (p *Panel) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.socket != nil
}

// Handlers returns the transport callbacks that feed the status board and
// the activity feed.
func (p *Panel) Handlers() transport.Handlers {
	return transport.Handlers{
		OnStatus: func(s protocol.ServiceStatus) {
			p.status.Update(s)
			if p.opts.OnStatus != nil {
				p.opts.OnStatus(s)
			}
		},
		OnActivity: func(a protocol.Activity) {
			p.feed.Add(a)
			if p.opts.OnActivity != nil {
				p.opts.OnActivity(a)
			}
		},
	}
}

// Connect dials the dashboard socket, attaches it and applies inbound
// events until the socket closes or ctx is done. It returns once the
// socket is attached; done receives the terminal error.
func (p *Panel) Connect(ctx context.Context, socketURL string, header http.Header) (done <-chan error, err error) {
	conn, err := transport.Dial(ctx, socketURL, header)
	if err != nil {
		var hsErr *transport.HandshakeError
		if errors.As(err, &hsErr) && hsErr.Unauthorized() {
			return nil, p.fail("connect socket", api.NewSessionExpiredError(transport.DashboardPath, "socket handshake rejected"))
		}
		return nil, fmt.Errorf("failed to connect socket: %w", err)
	}

	adapter := transport.NewAdapter(p.store, p.Handlers())
	p.Attach(conn)

	ch := make(chan error, 1)
	go func() {
		err := adapter.Run(ctx, conn)
		p.Detach(conn)
		_ = conn.Close()
		ch <- err
	}()
	return ch, nil
}

// Reconnect asks the server to reconnect an upstream service, subject to
// the cooldown.
func (p *Panel) Reconnect(s protocol.Service) error {
	p.mu.Lock()
	sock := p.socket
	p.mu.Unlock()
	if sock == nil {
		return ErrNoSocket
	}
	if !p.status.BeginReconnect(s) {
		return ErrCooldown
	}
	if err := sock.Reconnect(s); err != nil {
		return fmt.Errorf("failed to request %s reconnect: %w", s, err)
	}
	logging.Info("Reconnect requested", zap.String("service", string(s)))
	return nil
}

// Close detaches and closes the socket and stops rendering.
func (p *Panel) Close() error {
	p.mu.Lock()
	sock := p.socket
	p.socket = nil
	p.mu.Unlock()
	p.dispatcher.SetEmitter(nil)
	p.renderer.Close()
	if sock != nil {
		return sock.Close()
	}
	return nil
}

// refreshWithoutSocket reloads the configuration when no socket push will
// arrive to reflect a write.
func (p *Panel) refreshWithoutSocket(ctx context.Context) error {
	if p.Connected() {
		return nil
	}
	cfg, err := p.client.DeckConfig(ctx)
	if err != nil {
		return p.fail("refresh configuration", err)
	}
	p.store.UpdateDeckConfig(cfg)
	return nil
}

// fail logs err, notifies the host of session expiry and wraps err.
func (p *Panel) fail(op string, err error) error {
	logging.Error("Operation failed",
		zap.String("op", op),
		zap.String("reason", api.GetShortErrorMessage(err)),
		zap.Error(err),
	)
	if api.IsSessionExpired(err) && p.opts.OnSessionExpired != nil {
		p.opts.OnSessionExpired(err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
