package editor

import (
	"fmt"

	"github.com/harpiadesk/harpia/internal/deck"
	"github.com/harpiadesk/harpia/internal/protocol"
)

// Placeholder is the label of the empty picker entry.
const Placeholder = "-- Selecione --"

// SavedPrefix marks a saved value missing from the live snapshot.
const SavedPrefix = "[Salvo] "

// Option is one picker entry.
type Option struct {
	Value       string
	Label       string
	Unavailable bool
}

// Options returns the placeholder, the live entries, and, when saved is not
// among them, a marked entry for the saved value.
func Options(live []Option, saved string) []Option {
	out := make([]Option, 0, len(live)+2)
	out = append(out, Option{Value: "", Label: Placeholder})
	found := false
	for _, o := range live {
		out = append(out, o)
		if o.Value == saved {
			found = true
		}
	}
	if saved != "" && !found {
		out = append(out, Option{Value: saved, Label: SavedPrefix + saved, Unavailable: true})
	}
	return out
}

// Live is the snapshot of upstream data the pickers draw from.
type Live struct {
	Scenes      []protocol.Scene
	AudioInputs []protocol.AudioInput
	Hotkeys     []protocol.AvatarHotkey
}

// SceneOptions lists the scenes.
func (l Live) SceneOptions(saved string) []Option {
	live := make([]Option, 0, len(l.Scenes))
	for _, s := range l.Scenes {
		live = append(live, Option{Value: s.Name, Label: s.Name})
	}
	return Options(live, saved)
}

// SourceOptions lists the sources of scene.
func (l Live) SourceOptions(scene, saved string) []Option {
	var live []Option
	for _, s := range l.Scenes {
		if s.Name != scene {
			continue
		}
		for _, src := range s.Sources {
			live = append(live, Option{Value: src.Name, Label: src.Name})
		}
	}
	return Options(live, saved)
}

// AudioOptions lists the audio inputs.
func (l Live) AudioOptions(saved string) []Option {
	live := make([]Option, 0, len(l.AudioInputs))
	for _, a := range l.AudioInputs {
		live = append(live, Option{Value: a.Name, Label: a.Name})
	}
	return Options(live, saved)
}

// HotkeyOptions lists the avatar hotkeys as "name (type)".
func (l Live) HotkeyOptions(saved string) []Option {
	live := make([]Option, 0, len(l.Hotkeys))
	for _, h := range l.Hotkeys {
		live = append(live, Option{Value: h.HotkeyID, Label: fmt.Sprintf("%s (%s)", h.Name, h.Type)})
	}
	return Options(live, saved)
}

// Picker returns the options for a card parameter, or nil when the
// parameter is free text.
func (l Live) Picker(card ActionCard, param string) []Option {
	saved := card.Param(param)
	switch {
	case param == deck.ParamSceneName && (card.Kind == deck.ActionOBSScene || card.Kind == deck.ActionOBSSource):
		return l.SceneOptions(saved)
	case param == deck.ParamSourceName && card.Kind == deck.ActionOBSSource:
		return l.SourceOptions(card.Param(deck.ParamSceneName), saved)
	case param == deck.ParamInputName:
		return l.AudioOptions(saved)
	case param == deck.ParamHotkeyID:
		return l.HotkeyOptions(saved)
	default:
		return nil
	}
}

// KindOptions lists the action kinds, placeholder first.
func KindOptions() []Option {
	live := make([]Option, 0, len(deck.ActionKinds))
	for _, k := range deck.ActionKinds {
		live = append(live, Option{Value: string(k), Label: k.Group() + ": " + k.Label()})
	}
	return Options(live, "")
}

// Cycle returns the value after current in opts, wrapping around. delta may
// be negative.
func Cycle(opts []Option, current string, delta int) string {
	if len(opts) == 0 {
		return current
	}
	idx := 0
	for i, o := range opts {
		if o.Value == current {
			idx = i
			break
		}
	}
	idx = ((idx+delta)%len(opts) + len(opts)) % len(opts)
	return opts[idx].Value
}
