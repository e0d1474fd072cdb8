package panel

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/harpiadesk/harpia/internal/api"
	"github.com/harpiadesk/harpia/internal/deck"
	"github.com/harpiadesk/harpia/internal/editor"
	"github.com/harpiadesk/harpia/internal/protocol"
	"github.com/harpiadesk/harpia/internal/render"
	"github.com/harpiadesk/harpia/internal/store"
)

type fakeClient struct {
	mu        sync.Mutex
	cfg       *deck.Configuration
	err       error
	loads     int
	saved     []api.SaveButtonRequest
	deleted   []api.DeleteButtonRequest
	layouts   []api.SaveLayoutRequest
	uploads   []string
	block     chan struct{}
	uploadURL string
}

func (f *fakeClient) DeckConfig(context.Context) (*deck.Configuration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return f.cfg.Clone(), nil
}

func (f *fakeClient) SaveButton(_ context.Context, deckID deck.DeckID, slot deck.SlotID, cfg deck.ButtonConfig) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, api.SaveButtonRequest{SlotID: slot, DeckID: deckID, Config: cfg})
	return f.err
}

func (f *fakeClient) DeleteButton(_ context.Context, deckID deck.DeckID, slot deck.SlotID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, api.DeleteButtonRequest{SlotID: slot, DeckID: deckID})
	return f.err
}

func (f *fakeClient) SaveLayout(_ context.Context, deckID deck.DeckID, buttons deck.Buttons) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.layouts = append(f.layouts, api.SaveLayoutRequest{DeckID: deckID, Buttons: buttons})
	return f.err
}

func (f *fakeClient) UploadImage(_ context.Context, name string, r io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, name)
	if f.err != nil {
		return "", f.err
	}
	return f.uploadURL, nil
}

type fakeSocket struct {
	emitted    []string
	reconnects []protocol.Service
	snapshots  int
	closed     bool
}

func (s *fakeSocket) Emit(i protocol.Intent) error {
	s.emitted = append(s.emitted, i.Event)
	return nil
}
func (s *fakeSocket) Reconnect(svc protocol.Service) error {
	s.reconnects = append(s.reconnects, svc)
	return nil
}
func (s *fakeSocket) RequestSnapshots() error { s.snapshots++; return nil }
func (s *fakeSocket) Close() error            { s.closed = true; return nil }

func fixture() *deck.Configuration {
	return &deck.Configuration{
		Decks: map[deck.DeckID]deck.Buttons{
			deck.RootDeck: {
				"slot-0": {Label: "Game", ActionsOn: []deck.Action{{Type: deck.ActionOBSScene, Params: map[string]string{deck.ParamSceneName: "Game"}}}},
				"slot-1": {Label: "Música", ActionsOn: []deck.Action{{Type: deck.ActionOpenDeck, Params: map[string]string{deck.ParamDeckID: "musica"}}}},
				"slot-2": {Label: "Live", IsStateful: true,
					ActionsOn:  []deck.Action{{Type: deck.ActionOBSStreamToggle}},
					ActionsOff: []deck.Action{{Type: deck.ActionOBSStreamToggle}}},
			},
			"musica": {
				"slot-0": {Label: "Voltar", ActionsOn: []deck.Action{{Type: deck.ActionOpenDeck, Params: map[string]string{deck.ParamDeckID: deck.RootDeck}}}},
			},
		},
		Settings: deck.Settings{StartDeck: deck.RootDeck},
	}
}

func loaded(t *testing.T, client *fakeClient) *Panel {
	t.Helper()
	p := New(client, Options{})
	t.Cleanup(func() { p.Close() })
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return p
}

func TestLoad_StartDeck(t *testing.T) {
	cfg := fixture()
	cfg.Settings.StartDeck = "musica"
	p := loaded(t, &fakeClient{cfg: cfg})

	if got := p.Store().CurrentDeck(); got != "musica" {
		t.Errorf("CurrentDeck() = %q, want musica", got)
	}
	views := p.Renderer().Views()
	if views[0].Label != "Voltar" {
		t.Errorf("slot-0 label = %q, want Voltar", views[0].Label)
	}
}

func TestLoad_MissingStartDeckFallsBackToRoot(t *testing.T) {
	cfg := fixture()
	cfg.Settings.StartDeck = "gone"
	p := loaded(t, &fakeClient{cfg: cfg})

	if got := p.Store().CurrentDeck(); got != deck.RootDeck {
		t.Errorf("CurrentDeck() = %q, want root", got)
	}
}

func TestLoad_SessionExpired(t *testing.T) {
	var expired error
	client := &fakeClient{err: api.NewSessionExpiredError(api.PathDeckConfig, "expired")}
	p := New(client, Options{OnSessionExpired: func(err error) { expired = err }})
	defer p.Close()

	err := p.Load(context.Background())
	if !api.IsSessionExpired(err) {
		t.Fatalf("Load() error = %v, want session expired", err)
	}
	if expired == nil {
		t.Error("OnSessionExpired was not called")
	}
}

func TestPress_NormalMode(t *testing.T) {
	p := loaded(t, &fakeClient{cfg: fixture()})
	sock := &fakeSocket{}
	p.Attach(sock)

	res := p.Press("slot-0")
	if res.Kind != render.ClickExecute || len(res.Intents) != 1 {
		t.Fatalf("Press(slot-0) = %+v", res)
	}
	if len(sock.emitted) != 1 || sock.emitted[0] != protocol.EventSetScene {
		t.Errorf("emitted = %v", sock.emitted)
	}

	if res := p.Press("slot-9"); res.Kind != render.ClickNoop {
		t.Errorf("Press(empty) = %+v, want noop", res)
	}
	if res := p.Press("bogus"); res.Kind != render.ClickNoop {
		t.Errorf("Press(bogus) = %+v, want noop", res)
	}
}

func TestPress_OpenDeckNavigatesLocally(t *testing.T) {
	p := loaded(t, &fakeClient{cfg: fixture()})
	sock := &fakeSocket{}
	p.Attach(sock)

	p.Press("slot-1")
	if got := p.Store().CurrentDeck(); got != "musica" {
		t.Errorf("CurrentDeck() = %q, want musica", got)
	}
	if len(sock.emitted) != 0 {
		t.Errorf("open_deck emitted %v", sock.emitted)
	}

	p.Press("slot-0")
	if got := p.Store().CurrentDeck(); got != deck.RootDeck {
		t.Errorf("back button: CurrentDeck() = %q, want root", got)
	}
}

func TestPress_StatefulToggles(t *testing.T) {
	p := loaded(t, &fakeClient{cfg: fixture()})

	p.Press("slot-2")
	if !p.Renderer().Views()[2].Active {
		t.Error("slot-2 should be active after first press")
	}
	p.Press("slot-2")
	if p.Renderer().Views()[2].Active {
		t.Error("slot-2 should be inactive after second press")
	}
}

func TestPress_EditModeOpensEditor(t *testing.T) {
	p := loaded(t, &fakeClient{cfg: fixture()})
	sock := &fakeSocket{}
	p.Attach(sock)
	p.ToggleEditMode()

	res := p.Press("slot-0")
	if res.Kind != render.ClickOpenEditor || res.Form == nil || res.Form.Label != "Game" {
		t.Fatalf("Press(slot-0) in edit mode = %+v", res)
	}
	if len(sock.emitted) != 0 {
		t.Errorf("edit mode emitted %v", sock.emitted)
	}

	res = p.Press("slot-7")
	if res.Form == nil || !res.Form.New {
		t.Errorf("Press(empty) in edit mode = %+v, want new form", res)
	}
}

func TestSave_UsesCurrentDeckAndRefreshesWithoutSocket(t *testing.T) {
	client := &fakeClient{cfg: fixture()}
	p := loaded(t, client)
	p.Store().Navigate("musica")

	form := editor.Build(nil)
	form.Label = "Som"
	form.On[0].SetKind(deck.ActionSound)
	form.On[0].SetParam(deck.ParamFileName, "a.mp3")

	if err := p.Save(context.Background(), "slot-3", form); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(client.saved) != 1 {
		t.Fatalf("saved = %+v", client.saved)
	}
	got := client.saved[0]
	if got.DeckID != "musica" || got.SlotID != "slot-3" || got.Config.Label != "Som" {
		t.Errorf("saved = %+v", got)
	}
	if client.loads != 2 {
		t.Errorf("loads = %d, want refresh after save without socket", client.loads)
	}
	if p.Pending().Any() {
		t.Error("pending not released")
	}
}

func TestSave_WithSocketWaitsForPush(t *testing.T) {
	client := &fakeClient{cfg: fixture()}
	p := loaded(t, client)
	p.Attach(&fakeSocket{})

	if err := p.Save(context.Background(), "slot-3", editor.Build(nil)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if client.loads != 1 {
		t.Errorf("loads = %d, want no refresh while the socket is up", client.loads)
	}
}

func TestSave_FailureReleasesPending(t *testing.T) {
	client := &fakeClient{cfg: fixture()}
	p := loaded(t, client)
	client.err = api.NewHTTPError(api.PathSaveButton, 500, "Falha ao salvar no servidor")

	err := p.Save(context.Background(), "slot-3", editor.Build(nil))
	if !api.IsHTTPError(err) {
		t.Errorf("Save() error = %v, want HTTP error", err)
	}
	if p.Pending().Busy(pendingSave("slot-3")) {
		t.Error("pending not released after failure")
	}
}

func TestSave_BusyGuard(t *testing.T) {
	client := &fakeClient{cfg: fixture(), block: make(chan struct{})}
	p := loaded(t, client)
	p.Attach(&fakeSocket{})

	done := make(chan error)
	go func() { done <- p.Save(context.Background(), "slot-3", editor.Build(nil)) }()

	for !p.SlotBusy("slot-3") {
	}
	if p.SlotBusy("slot-4") {
		t.Error("SlotBusy(slot-4) = true during a slot-3 save")
	}
	if err := p.Save(context.Background(), "slot-3", editor.Build(nil)); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Save() error = %v, want ErrBusy", err)
	}
	close(client.block)
	if err := <-done; err != nil {
		t.Errorf("first Save() error = %v", err)
	}
	if p.SlotBusy("slot-3") {
		t.Error("SlotBusy(slot-3) still true after Save returned")
	}
}

func TestDelete(t *testing.T) {
	client := &fakeClient{cfg: fixture()}
	p := loaded(t, client)
	p.Attach(&fakeSocket{})

	if err := p.Delete(context.Background(), "slot-0"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(client.deleted) != 1 || client.deleted[0].DeckID != deck.RootDeck || client.deleted[0].SlotID != "slot-0" {
		t.Errorf("deleted = %+v", client.deleted)
	}
}

func TestUpload(t *testing.T) {
	client := &fakeClient{cfg: fixture(), uploadURL: "/uploads/1_icon.png"}
	p := loaded(t, client)

	url, err := p.Upload(context.Background(), "icon.png", strings.NewReader("x"))
	if err != nil || url != "/uploads/1_icon.png" {
		t.Errorf("Upload() = %q, %v", url, err)
	}
	if p.Pending().Busy(pendingUpload) {
		t.Error("upload still pending")
	}
}

func TestReorder_OptimisticWithoutRollback(t *testing.T) {
	client := &fakeClient{cfg: fixture()}
	p := loaded(t, client)
	client.err = api.NewHTTPError(api.PathSaveLayout, 500, "Falha")

	err := p.Move(context.Background(), "slot-0", "slot-5")
	if err == nil {
		t.Fatal("Move() should report the failed save")
	}

	views := p.Renderer().Views()
	if !views[0].Empty || views[5].Label != "Game" {
		t.Errorf("grid after failed save: slot-0=%+v slot-5=%+v, want local rewrite kept", views[0], views[5])
	}
	if len(client.layouts) != 1 || client.layouts[0].DeckID != deck.RootDeck {
		t.Fatalf("layouts = %+v", client.layouts)
	}
	if _, ok := client.layouts[0].Buttons["slot-5"]; !ok {
		t.Errorf("saved layout = %+v, want slot-5", client.layouts[0].Buttons)
	}
}

func TestMove_InvalidSlot(t *testing.T) {
	p := loaded(t, &fakeClient{cfg: fixture()})
	if err := p.Move(context.Background(), "slot-0", "slot-99"); err == nil {
		t.Error("Move() to an invalid slot should fail")
	}
}

func TestAttachDetach(t *testing.T) {
	p := loaded(t, &fakeClient{cfg: fixture()})
	sock := &fakeSocket{}

	p.Attach(sock)
	if sock.snapshots != 1 {
		t.Errorf("snapshots = %d, want 1 on attach", sock.snapshots)
	}
	if !p.Connected() {
		t.Error("Connected() = false after Attach")
	}

	p.Detach(&fakeSocket{})
	if !p.Connected() {
		t.Error("Detach of another socket detached the current one")
	}

	p.Detach(sock)
	p.Press("slot-0")
	if len(sock.emitted) != 0 {
		t.Errorf("detached socket received %v", sock.emitted)
	}
}

func TestReconnect(t *testing.T) {
	p := loaded(t, &fakeClient{cfg: fixture()})

	if err := p.Reconnect(protocol.ServiceOBS); !errors.Is(err, ErrNoSocket) {
		t.Errorf("Reconnect() without socket = %v", err)
	}

	sock := &fakeSocket{}
	p.Attach(sock)
	p.Handlers().OnStatus(protocol.ServiceStatus{Service: protocol.ServiceOBS, Connected: false})

	if err := p.Reconnect(protocol.ServiceOBS); err != nil {
		t.Fatalf("Reconnect() error = %v", err)
	}
	if err := p.Reconnect(protocol.ServiceOBS); !errors.Is(err, ErrCooldown) {
		t.Errorf("second Reconnect() = %v, want ErrCooldown", err)
	}
	if len(sock.reconnects) != 1 || sock.reconnects[0] != protocol.ServiceOBS {
		t.Errorf("reconnects = %v", sock.reconnects)
	}
}

func TestHandlers_FeedActivity(t *testing.T) {
	var seen int
	p := New(&fakeClient{cfg: fixture()}, Options{OnActivity: func(protocol.Activity) { seen++ }})
	defer p.Close()

	p.Handlers().OnActivity(protocol.Activity{Message: "novo seguidor", Type: "channel.follow"})
	if p.Feed().Len() != 1 || seen != 1 {
		t.Errorf("feed len = %d, callback calls = %d", p.Feed().Len(), seen)
	}
}

func TestReload_ResetsState(t *testing.T) {
	client := &fakeClient{cfg: fixture()}
	p := loaded(t, client)
	p.ToggleEditMode()
	p.Store().Navigate("musica")

	if err := p.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if p.Store().Mode() != store.ModeNormal || p.Store().CurrentDeck() != deck.RootDeck {
		t.Errorf("after Reload mode=%v deck=%q", p.Store().Mode(), p.Store().CurrentDeck())
	}
}

func TestClose_ClosesSocket(t *testing.T) {
	p := New(&fakeClient{cfg: fixture()}, Options{})
	sock := &fakeSocket{}
	p.Attach(sock)
	p.Close()
	if !sock.closed || p.Connected() {
		t.Errorf("closed=%v connected=%v", sock.closed, p.Connected())
	}
}
