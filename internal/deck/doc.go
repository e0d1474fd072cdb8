// Package deck defines the button deck configuration tree shared with the
// panel backend.
//
// A Configuration holds named decks (folders), each a mapping from a
// positional slot id ("slot-0" .. "slot-15") to a ButtonConfig. A button
// carries an ordered list of actions to run when pressed, and, when it is
// stateful, a second list to run when it is toggled back off.
//
// The JSON shape matches what the backend stores and pushes over the
// socket, so values decoded here can be sent back unchanged:
//
//	{
//	  "decks": {
//	    "root": {
//	      "slot-0": {
//	        "label": "Game",
//	        "icon": "fa-solid fa-gamepad",
//	        "is_stateful": false,
//	        "actions_on": [{"type": "obs_scene", "params": {"scene_name": "Game"}}],
//	        "actions_off": []
//	      }
//	    }
//	  },
//	  "settings": {"start_deck": "root"}
//	}
//
// Icons are not tagged: a value starting with "http" or "/uploads" is an
// image reference, anything else is an icon class token. The backend's
// stored data relies on this convention.
package deck
