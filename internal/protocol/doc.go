// Package protocol defines the vocabulary exchanged with the panel backend
// over the dashboard socket.
//
// Every socket message is a JSON text frame carrying an envelope:
//
//	{"event": "set_obs_scene", "data": {"scene_name": "Game"}}
//
// Event names are shared with the backend. Inbound events carry connection
// status for the two upstream services, full deck configuration pushes,
// live snapshots used by the editor pickers, and activity feed
// notifications. Outbound events are the button intents built by the
// dispatcher plus snapshot and reconnect requests.
//
// # Intents
//
// An Intent is one outbound request derived from one button action. Most
// intents are sent over the socket; navigation (open_deck) is local and is
// never sent:
//
//	intent := protocol.SetScene("Game")
//	data, err := protocol.Encode(intent.Event, intent.Data)
package protocol
