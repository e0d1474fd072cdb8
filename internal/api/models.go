package api

import (
	"time"

	"github.com/harpiadesk/harpia/internal/deck"
)

// SaveButtonRequest is the body of /api/save_button.
type SaveButtonRequest struct {
	SlotID deck.SlotID       `json:"slot_id"`
	DeckID deck.DeckID       `json:"deck_id"`
	Config deck.ButtonConfig `json:"config"`
}

// DeleteButtonRequest is the body of /api/delete_button.
type DeleteButtonRequest struct {
	SlotID deck.SlotID `json:"slot_id"`
	DeckID deck.DeckID `json:"deck_id"`
}

// SaveLayoutRequest is the body of /api/save_deck_layout.
type SaveLayoutRequest struct {
	DeckID  deck.DeckID  `json:"deck_id"`
	Buttons deck.Buttons `json:"buttons"`
}

// ChannelInfo is the channel's current metadata.
type ChannelInfo struct {
	Title      string `json:"title"`
	Category   string `json:"category"`
	CategoryID string `json:"category_id"`
}

// ChannelUpdate changes the title and, optionally, the category.
type ChannelUpdate struct {
	Title  string `json:"title"`
	GameID string `json:"game_id,omitempty"`
}

// Stream states reported by /api/stream_stats.
const (
	StreamOnline  = "online"
	StreamOffline = "offline"
)

// StreamStats is the live stream state.
type StreamStats struct {
	Status      string    `json:"status"`
	ViewerCount int       `json:"viewer_count"`
	StartedAt   time.Time `json:"started_at"`
}

// Online reports whether the stream is live.
func (s StreamStats) Online() bool {
	return s.Status == StreamOnline
}

// Game is a category search result.
type Game struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BoxArtURL string `json:"box_art_url"`
}

type uploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}
