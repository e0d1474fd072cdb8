// Package render projects the store onto the fixed deck grid.
//
// Render is a pure function of its inputs so any host (the terminal UI,
// the CLI, tests) gets the same view for the same state. Renderer wraps it
// with a store subscription and re-projects once per notification.
package render

import (
	"strings"
	"sync"

	"github.com/harpiadesk/harpia/internal/deck"
	"github.com/harpiadesk/harpia/internal/store"
)

// Category groups buttons visually by their first action.
type Category string

const (
	CategoryNone   Category = ""
	CategorySound  Category = "sound"
	CategoryHotkey Category = "hotkey"
	CategoryOBS    Category = "obs"
	CategoryVTS    Category = "vts"
)

// SlotView is the projection of one grid cell.
type SlotView struct {
	Slot     deck.SlotID
	Empty    bool
	Label    string
	Icon     deck.Icon
	Active   bool
	Category Category
}

// Render projects the current deck onto deck.GridSize slot views. A nil
// configuration or a missing deck renders every slot empty.
func Render(cfg *deck.Configuration, current deck.DeckID, toggles store.ToggleState, mode store.ViewMode) []SlotView {
	buttons := cfg.Deck(current)
	views := make([]SlotView, deck.GridSize)
	for i := range views {
		slot := deck.Slot(i)
		button, ok := buttons[slot]
		if !ok {
			views[i] = SlotView{Slot: slot, Empty: true}
			continue
		}
		views[i] = SlotView{
			Slot:     slot,
			Label:    button.Label,
			Icon:     deck.ClassifyIcon(button.Icon),
			Active:   button.IsStateful && toggles[slot],
			Category: Classify(button),
		}
	}
	return views
}

// RenderSnapshot renders a store snapshot.
func RenderSnapshot(s store.Snapshot) []SlotView {
	return Render(s.Config, s.CurrentDeck, s.Toggles, s.Mode)
}

// Classify derives the category from the first entry of ActionsOn only.
// Later actions never change the category.
func Classify(b deck.ButtonConfig) Category {
	if len(b.ActionsOn) == 0 {
		return CategoryNone
	}
	kind := string(b.ActionsOn[0].Type)
	switch {
	case kind == string(deck.ActionSound):
		return CategorySound
	case kind == string(deck.ActionHotkey) || kind == string(deck.ActionOpenDeck):
		return CategoryHotkey
	case strings.Contains(kind, "obs"):
		return CategoryOBS
	case strings.Contains(kind, "vts"):
		return CategoryVTS
	default:
		return CategoryNone
	}
}

// ClickKind says what a click on a slot does.
type ClickKind int

const (
	ClickNoop ClickKind = iota
	ClickOpenEditor
	ClickExecute
)

// Click resolves a click on view in the given mode. In edit mode every
// slot opens the editor; otherwise only populated slots execute.
func Click(view SlotView, mode store.ViewMode) ClickKind {
	if mode == store.ModeEdit {
		return ClickOpenEditor
	}
	if view.Empty {
		return ClickNoop
	}
	return ClickExecute
}

// Renderer keeps an up-to-date projection of a store.
type Renderer struct {
	mu       sync.Mutex
	store    *store.Store
	views    []SlotView
	renders  int
	onRender func([]SlotView)
	cancel   []func()
}

// NewRenderer renders s once and re-renders on every change that affects
// the grid. onRender may be nil.
func NewRenderer(s *store.Store, onRender func([]SlotView)) *Renderer {
	r := &Renderer{store: s, onRender: onRender}
	for _, key := range []store.Key{store.KeyDeckConfig, store.KeyCurrentDeck, store.KeyViewMode, store.KeyButtonStates} {
		r.cancel = append(r.cancel, s.Subscribe(key, func(store.Key, any) { r.render() }))
	}
	r.render()
	return r
}

// Views returns the latest projection.
func (r *Renderer) Views() []SlotView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SlotView(nil), r.views...)
}

// Renders returns how many times the grid was projected.
func (r *Renderer) Renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders
}

// Close removes the store subscriptions.
func (r *Renderer) Close() {
	for _, c := range r.cancel {
		c()
	}
	r.cancel = nil
}

func (r *Renderer) render() {
	views := RenderSnapshot(r.store.Snapshot())
	r.mu.Lock()
	r.views = views
	r.renders++
	r.mu.Unlock()
	if r.onRender != nil {
		r.onRender(views)
	}
}
