package live

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/harpiadesk/harpia/internal/api"
)

const (
	// MinQueryLength is the shortest query sent to the search endpoint.
	MinQueryLength = 3
	// MaxResults is the number of search results offered.
	MaxResults = 5
)

// GameSource searches categories.
type GameSource interface {
	SearchGames(ctx context.Context, query string) ([]api.Game, error)
}

// GameSearch tracks search results and the selected category.
type GameSearch struct {
	src GameSource

	mu       sync.Mutex
	results  []api.Game
	selected api.Game
}

// NewGameSearch creates a search over src.
func NewGameSearch(src GameSource) *GameSearch {
	return &GameSearch{src: src}
}

// Search runs a query. Queries shorter than MinQueryLength clear the
// results without a request.
func (g *GameSearch) Search(ctx context.Context, query string) ([]api.Game, error) {
	if utf8.RuneCountInString(query) < MinQueryLength {
		g.mu.Lock()
		g.results = nil
		g.mu.Unlock()
		return nil, nil
	}

	games, err := g.src.SearchGames(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(games) > MaxResults {
		games = games[:MaxResults]
	}

	g.mu.Lock()
	g.results = games
	g.mu.Unlock()
	return append([]api.Game(nil), games...), nil
}

// Results returns the last results.
func (g *GameSearch) Results() []api.Game {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]api.Game(nil), g.results...)
}

// Select picks result i and clears the result list.
func (g *GameSearch) Select(i int) (api.Game, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if i < 0 || i >= len(g.results) {
		return api.Game{}, false
	}
	g.selected = g.results[i]
	g.results = nil
	return g.selected, true
}

// SetCurrent records the channel's current category.
func (g *GameSearch) SetCurrent(id, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selected = api.Game{ID: id, Name: name}
}

// Selected returns the selected category.
func (g *GameSearch) Selected() api.Game {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selected
}

// Update builds a channel update carrying title and, when one is known,
// the selected category.
func (g *GameSearch) Update(title string) api.ChannelUpdate {
	return api.ChannelUpdate{Title: title, GameID: g.Selected().ID}
}
