package store

import "github.com/harpiadesk/harpia/internal/deck"

// Key names a piece of store state.
type Key string

const (
	KeyDeckConfig    Key = "deckConfig"
	KeyCurrentDeck   Key = "currentDeckId"
	KeyButtonStates  Key = "buttonStates"
	KeyViewMode      Key = "viewMode"
	KeyScenes        Key = "obsScenes"
	KeyAudioInputs   Key = "obsAudioSources"
	KeyAvatarHotkeys Key = "vtsHotkeys"

	// KeyAll subscribes to every key.
	KeyAll Key = "*"
)

// ToggleState maps slots of the current deck to their on/off state.
type ToggleState map[deck.SlotID]bool

// Clone returns a copy of the toggle state.
func (t ToggleState) Clone() ToggleState {
	out := make(ToggleState, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// ViewMode is the panel's interaction mode.
type ViewMode int

const (
	// ModeNormal runs button actions on press.
	ModeNormal ViewMode = iota
	// ModeEdit opens the editor on press and allows reordering.
	ModeEdit
)

func (m ViewMode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "normal"
}

// Toggled returns the other mode.
func (m ViewMode) Toggled() ViewMode {
	if m == ModeEdit {
		return ModeNormal
	}
	return ModeEdit
}
