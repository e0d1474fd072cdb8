package render

import (
	"testing"

	"github.com/harpiadesk/harpia/internal/deck"
	"github.com/harpiadesk/harpia/internal/store"
)

func fixture() *deck.Configuration {
	return &deck.Configuration{Decks: map[deck.DeckID]deck.Buttons{
		"root": {
			"slot-0": {Label: "Game", Icon: "fa-solid fa-gamepad", ActionsOn: []deck.Action{{Type: deck.ActionOBSScene}}},
			"slot-3": {Label: "Mic", Icon: "/uploads/abc.png", IsStateful: true, ActionsOn: []deck.Action{{Type: deck.ActionOBSMuteOn}}},
			"slot-5": {Label: "Plain", IsStateful: false},
		},
	}}
}

func TestRender_EmptySlots(t *testing.T) {
	views := Render(fixture(), "root", nil, store.ModeNormal)
	if len(views) != deck.GridSize {
		t.Fatalf("len(Render()) = %d, want %d", len(views), deck.GridSize)
	}

	for i, v := range views {
		if v.Slot != deck.Slot(i) {
			t.Errorf("views[%d].Slot = %q, want %q", i, v.Slot, deck.Slot(i))
		}
		populated := i == 0 || i == 3 || i == 5
		if v.Empty == populated {
			t.Errorf("views[%d].Empty = %v, want %v", i, v.Empty, !populated)
		}
	}
}

func TestRender_MissingDeckOrConfig(t *testing.T) {
	for _, cfg := range []*deck.Configuration{nil, fixture()} {
		for _, v := range Render(cfg, "nowhere", nil, store.ModeNormal) {
			if !v.Empty {
				t.Fatalf("slot %s should be empty for a missing deck", v.Slot)
			}
		}
	}
}

func TestRender_ActiveOnlyForStateful(t *testing.T) {
	toggles := store.ToggleState{"slot-3": true, "slot-5": true}
	views := Render(fixture(), "root", toggles, store.ModeNormal)

	if !views[3].Active {
		t.Error("stateful slot-3 with toggle on should be active")
	}
	if views[5].Active {
		t.Error("non-stateful slot-5 must never be active")
	}
	if views[0].Active {
		t.Error("slot-0 has no toggle and should be inactive")
	}
}

func TestRender_IconPaths(t *testing.T) {
	views := Render(fixture(), "root", nil, store.ModeNormal)

	if views[3].Icon.Kind != deck.IconImage || views[3].Icon.Value != "/uploads/abc.png" {
		t.Errorf("slot-3 icon = %+v, want image /uploads/abc.png", views[3].Icon)
	}
	if views[0].Icon.Kind != deck.IconClass || views[0].Icon.Value != "fa-solid fa-gamepad" {
		t.Errorf("slot-0 icon = %+v, want class", views[0].Icon)
	}
	if views[5].Icon.Value != deck.DefaultIconClass {
		t.Errorf("slot-5 icon = %+v, want default class", views[5].Icon)
	}
}

func TestClassify_FirstActionWins(t *testing.T) {
	tests := []struct {
		name    string
		actions []deck.ActionKind
		want    Category
	}{
		{"none", nil, CategoryNone},
		{"sound", []deck.ActionKind{deck.ActionSound}, CategorySound},
		{"hotkey", []deck.ActionKind{deck.ActionHotkey}, CategoryHotkey},
		{"open deck", []deck.ActionKind{deck.ActionOpenDeck}, CategoryHotkey},
		{"obs", []deck.ActionKind{deck.ActionOBSRecordToggle}, CategoryOBS},
		{"vts", []deck.ActionKind{deck.ActionVTSHotkey}, CategoryVTS},
		{"sound later is ignored", []deck.ActionKind{deck.ActionOBSScene, deck.ActionSound}, CategoryOBS},
		{"unknown first", []deck.ActionKind{"teleport", deck.ActionSound}, CategoryNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b deck.ButtonConfig
			for _, k := range tt.actions {
				b.ActionsOn = append(b.ActionsOn, deck.Action{Type: k})
			}
			if got := Classify(b); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClick(t *testing.T) {
	empty := SlotView{Empty: true}
	full := SlotView{Label: "x"}

	tests := []struct {
		name string
		view SlotView
		mode store.ViewMode
		want ClickKind
	}{
		{"edit empty", empty, store.ModeEdit, ClickOpenEditor},
		{"edit populated", full, store.ModeEdit, ClickOpenEditor},
		{"normal empty", empty, store.ModeNormal, ClickNoop},
		{"normal populated", full, store.ModeNormal, ClickExecute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Click(tt.view, tt.mode); got != tt.want {
				t.Errorf("Click() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderer_OneRenderPerConfigUpdate(t *testing.T) {
	s := store.New()
	var last []SlotView
	r := NewRenderer(s, func(v []SlotView) { last = v })
	defer r.Close()

	before := r.Renders()
	s.UpdateDeckConfig(fixture())

	if got := r.Renders() - before; got != 1 {
		t.Errorf("UpdateDeckConfig caused %d renders, want 1", got)
	}
	if last[0].Label != "Game" {
		t.Errorf("rendered slot-0 label = %q, want Game", last[0].Label)
	}

	s.Toggle("slot-3")
	if !r.Views()[3].Active {
		t.Error("renderer should reflect toggle changes")
	}

	before = r.Renders()
	s.Navigate("sons")
	if got := r.Renders() - before; got != 1 {
		t.Errorf("Navigate caused %d renders, want 1", got)
	}
	if r.Views()[3].Active {
		t.Error("navigation should render with toggles cleared")
	}
}
