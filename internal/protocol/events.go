package protocol

// Inbound event names.
const (
	EventOBSStatus     = "obs_status"
	EventVTSStatus     = "vts_status"
	EventDeckUpdated   = "deck_updated"
	EventSceneDetails  = "obs_scene_details_data"
	EventAvatarHotkeys = "vts_data_list"
	EventActivity      = "eventsub_notification"
)

// Outbound event names.
const (
	EventSetScene            = "set_obs_scene"
	EventToggleSource        = "toggle_source_visibility"
	EventPlaySound           = "play_sound"
	EventRunHotkey           = "run_hotkey"
	EventTriggerAvatarHotkey = "vts_trigger_hotkey"
	EventSetMute             = "obs_set_mute"
	EventStreamToggle        = "obs_stream_toggle"
	EventRecordToggle        = "obs_record_toggle"
	EventReconnectOBS        = "reconnect_obs"
	EventReconnectVTS        = "reconnect_vts"
	EventGetSceneDetails     = "get_obs_scene_details"
	EventGetAvatarData       = "get_vts_data"
)

// EventNavigate marks a local navigation intent. It is never sent.
const EventNavigate = "navigate"

// Service names an upstream production tool.
type Service string

const (
	ServiceOBS Service = "obs"
	ServiceVTS Service = "vts"
)

// Services lists the upstream services in display order.
var Services = []Service{ServiceOBS, ServiceVTS}

// StatusEvent returns the inbound status event name for the service.
func (s Service) StatusEvent() string {
	if s == ServiceVTS {
		return EventVTSStatus
	}
	return EventOBSStatus
}

// ReconnectEvent returns the outbound reconnect request for the service.
func (s Service) ReconnectEvent() string {
	if s == ServiceVTS {
		return EventReconnectVTS
	}
	return EventReconnectOBS
}

// ServiceStatus is the payload of obs_status and vts_status.
type ServiceStatus struct {
	Service   Service `json:"-"`
	Connected bool    `json:"connected"`
	Message   string  `json:"message"`
}

// Source is an item within a scene.
type Source struct {
	Name string `json:"name"`
	ID   int    `json:"id,omitempty"`
}

// Scene is a compositor scene and its sources.
type Scene struct {
	Name    string   `json:"name"`
	Sources []Source `json:"sources"`
}

// AudioInput is a mutable audio input.
type AudioInput struct {
	Name string `json:"name"`
}

// SceneDetails is the payload of obs_scene_details_data.
type SceneDetails struct {
	Scenes      []Scene      `json:"scenes"`
	AudioInputs []AudioInput `json:"audio_inputs"`
}

// AvatarHotkey is a hotkey exposed by the avatar tool.
type AvatarHotkey struct {
	HotkeyID string `json:"hotkeyID"`
	Name     string `json:"name"`
	Type     string `json:"type"`
}

// AvatarHotkeys is the payload of vts_data_list.
type AvatarHotkeys struct {
	Hotkeys []AvatarHotkey `json:"hotkeys"`
}

// Activity is the payload of eventsub_notification.
type Activity struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
