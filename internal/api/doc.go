// Package api is the HTTP client for the harpia server's REST surface.
//
// The server owns the deck configuration and the channel metadata; this
// client only reads and writes through it. Authentication rides on the
// server's session cookie. Requests are never retried: a failure is
// classified and returned, and the caller decides what to show.
//
// # Endpoints
//
//   - GET  /api/deck_config          full configuration
//   - POST /api/save_button          {slot_id, deck_id, config}
//   - POST /api/delete_button        {slot_id, deck_id}
//   - POST /api/save_deck_layout     {deck_id, buttons}
//   - POST /api/upload_image         multipart field "croppedImage"
//   - GET  /api/channel_info         title and category
//   - POST /api/update_channel       {title, game_id?}
//   - GET  /api/stream_stats         online state, viewers, start time
//   - GET  /api/search_games?query=  category search
//
// # Errors
//
// Every error returned by Client is an *APIError. A 401 maps to
// ErrTypeSessionExpired, which callers treat as fatal for the session:
//
//	cfg, err := client.DeckConfig(ctx)
//	if api.IsSessionExpired(err) {
//	    // reload
//	}
package api
