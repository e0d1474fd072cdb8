package protocol

import "github.com/harpiadesk/harpia/internal/deck"

// Intent is one outbound request built from one button action.
type Intent struct {
	Event string
	Data  any
}

// Local reports whether the intent is handled by the client itself.
func (i Intent) Local() bool {
	return i.Event == EventNavigate
}

// SceneRequest is the payload of set_obs_scene.
type SceneRequest struct {
	SceneName string `json:"scene_name"`
}

// SourceRequest is the payload of toggle_source_visibility.
type SourceRequest struct {
	SceneName  string `json:"scene_name"`
	SourceName string `json:"source_name"`
}

// SoundRequest is the payload of play_sound.
type SoundRequest struct {
	File string `json:"file"`
}

// HotkeyRequest is the payload of run_hotkey. KeysStr is plus-joined in
// press order.
type HotkeyRequest struct {
	KeysStr string `json:"keys_str"`
}

// AvatarHotkeyRequest is the payload of vts_trigger_hotkey.
type AvatarHotkeyRequest struct {
	HotkeyID string `json:"hotkey_id"`
}

// MuteRequest is the payload of obs_set_mute.
type MuteRequest struct {
	InputName string `json:"input_name"`
	MuteState bool   `json:"mute_state"`
}

// NavigateRequest is the payload of a local navigation intent.
type NavigateRequest struct {
	DeckID deck.DeckID `json:"deck_id"`
}

func SetScene(scene string) Intent {
	return Intent{Event: EventSetScene, Data: SceneRequest{SceneName: scene}}
}

func ToggleSource(scene, source string) Intent {
	return Intent{Event: EventToggleSource, Data: SourceRequest{SceneName: scene, SourceName: source}}
}

func PlaySound(file string) Intent {
	return Intent{Event: EventPlaySound, Data: SoundRequest{File: file}}
}

func RunHotkey(keys string) Intent {
	return Intent{Event: EventRunHotkey, Data: HotkeyRequest{KeysStr: keys}}
}

func TriggerAvatarHotkey(id string) Intent {
	return Intent{Event: EventTriggerAvatarHotkey, Data: AvatarHotkeyRequest{HotkeyID: id}}
}

func SetMute(input string, muted bool) Intent {
	return Intent{Event: EventSetMute, Data: MuteRequest{InputName: input, MuteState: muted}}
}

func ToggleStream() Intent {
	return Intent{Event: EventStreamToggle}
}

func ToggleRecord() Intent {
	return Intent{Event: EventRecordToggle}
}

// Navigate builds the local intent for open_deck. An empty id means root.
func Navigate(deckID deck.DeckID) Intent {
	if deckID == "" {
		deckID = deck.RootDeck
	}
	return Intent{Event: EventNavigate, Data: NavigateRequest{DeckID: deckID}}
}

// Reconnect asks the backend to reconnect to an upstream service.
func Reconnect(s Service) Intent {
	return Intent{Event: s.ReconnectEvent()}
}

// RequestSceneDetails asks for a fresh scene and audio input snapshot.
func RequestSceneDetails() Intent {
	return Intent{Event: EventGetSceneDetails}
}

// RequestAvatarData asks for a fresh avatar hotkey snapshot.
func RequestAvatarData() Intent {
	return Intent{Event: EventGetAvatarData}
}

// FromAction translates an action into its intent. It reports false for
// unknown or empty kinds.
func FromAction(a deck.Action) (Intent, bool) {
	switch a.Type {
	case deck.ActionOBSScene:
		return SetScene(a.Param(deck.ParamSceneName)), true
	case deck.ActionOBSSource:
		return ToggleSource(a.Param(deck.ParamSceneName), a.Param(deck.ParamSourceName)), true
	case deck.ActionSound:
		return PlaySound(a.Param(deck.ParamFileName)), true
	case deck.ActionHotkey:
		return RunHotkey(a.Param(deck.ParamKeysStr)), true
	case deck.ActionVTSHotkey:
		return TriggerAvatarHotkey(a.Param(deck.ParamHotkeyID)), true
	case deck.ActionOBSMuteOn:
		return SetMute(a.Param(deck.ParamInputName), true), true
	case deck.ActionOBSMuteOff:
		return SetMute(a.Param(deck.ParamInputName), false), true
	case deck.ActionOBSStreamToggle:
		return ToggleStream(), true
	case deck.ActionOBSRecordToggle:
		return ToggleRecord(), true
	case deck.ActionOpenDeck:
		return Navigate(a.Param(deck.ParamDeckID)), true
	default:
		return Intent{}, false
	}
}
