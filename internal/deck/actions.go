package deck

import "strings"

// ActionKind identifies what an action does.
type ActionKind string

// Action kinds understood by this client. The set is closed; anything else
// is treated as a no-op.
const (
	ActionOBSScene        ActionKind = "obs_scene"
	ActionOBSSource       ActionKind = "obs_source"
	ActionSound           ActionKind = "sound"
	ActionHotkey          ActionKind = "hotkey"
	ActionVTSHotkey       ActionKind = "vts_hotkey"
	ActionOBSMuteOn       ActionKind = "obs_set_mute_on"
	ActionOBSMuteOff      ActionKind = "obs_set_mute_off"
	ActionOBSStreamToggle ActionKind = "obs_stream_toggle"
	ActionOBSRecordToggle ActionKind = "obs_record_toggle"
	ActionOpenDeck        ActionKind = "open_deck"
)

// Parameter names used by action params.
const (
	ParamSceneName  = "scene_name"
	ParamSourceName = "source_name"
	ParamFileName   = "file_name"
	ParamKeysStr    = "keys_str"
	ParamHotkeyID   = "hotkey_id"
	ParamInputName  = "input_name"
	ParamDeckID     = "deck_id"
)

// ActionKinds lists every known kind in editor menu order.
var ActionKinds = []ActionKind{
	ActionOBSScene,
	ActionOBSSource,
	ActionOBSMuteOn,
	ActionOBSMuteOff,
	ActionOBSStreamToggle,
	ActionOBSRecordToggle,
	ActionSound,
	ActionHotkey,
	ActionOpenDeck,
	ActionVTSHotkey,
}

var kindParams = map[ActionKind][]string{
	ActionOBSScene:        {ParamSceneName},
	ActionOBSSource:       {ParamSceneName, ParamSourceName},
	ActionSound:           {ParamFileName},
	ActionHotkey:          {ParamKeysStr},
	ActionVTSHotkey:       {ParamHotkeyID},
	ActionOBSMuteOn:       {ParamInputName},
	ActionOBSMuteOff:      {ParamInputName},
	ActionOBSStreamToggle: nil,
	ActionOBSRecordToggle: nil,
	ActionOpenDeck:        {ParamDeckID},
}

var kindLabels = map[ActionKind]string{
	ActionOBSScene:        "Mudar Cena",
	ActionOBSSource:       "Alternar Fonte",
	ActionOBSMuteOn:       "Mutar",
	ActionOBSMuteOff:      "Desmutar",
	ActionOBSStreamToggle: "Alternar Live",
	ActionOBSRecordToggle: "Alternar Gravação",
	ActionSound:           "Tocar Som",
	ActionHotkey:          "Atalho de Teclado",
	ActionOpenDeck:        "Abrir Pasta",
	ActionVTSHotkey:       "Disparar Hotkey",
}

// Known reports whether the kind is one of ActionKinds.
func (k ActionKind) Known() bool {
	_, ok := kindParams[k]
	return ok
}

// Params returns the parameter names a card of this kind edits.
func (k ActionKind) Params() []string {
	return append([]string(nil), kindParams[k]...)
}

// RequiredParams returns the parameters that must be non-empty.
// open_deck falls back to the root deck, so its deck_id is optional.
func (k ActionKind) RequiredParams() []string {
	if k == ActionOpenDeck {
		return nil
	}
	return k.Params()
}

// Label returns the menu label for the kind.
func (k ActionKind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// Group returns the editor menu group of the kind.
func (k ActionKind) Group() string {
	switch {
	case strings.HasPrefix(string(k), "obs_"):
		return "OBS"
	case k == ActionVTSHotkey:
		return "VTube Studio"
	default:
		return "Sistema"
	}
}
