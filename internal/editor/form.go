package editor

import (
	"github.com/harpiadesk/harpia/internal/deck"
)

// ImageSourceTab is the icon input mode.
type ImageSourceTab int

const (
	TabIcon ImageSourceTab = iota
	TabLink
	TabUpload
)

func (t ImageSourceTab) String() string {
	switch t {
	case TabLink:
		return "link"
	case TabUpload:
		return "upload"
	default:
		return "icon"
	}
}

// Next cycles icon → link → upload → icon.
func (t ImageSourceTab) Next() ImageSourceTab {
	return (t + 1) % 3
}

// IconField holds the icon inputs of every tab. Only the active tab is read.
type IconField struct {
	Tab   ImageSourceTab
	Class string
	Link  string
}

// SelectTab switches the active tab. Values typed into other tabs are kept.
func (f *IconField) SelectTab(t ImageSourceTab) {
	f.Tab = t
}

// CompleteUpload stores the URL returned by the upload and shows it on the
// link tab.
func (f *IconField) CompleteUpload(url string) {
	f.Link = url
	f.Tab = TabLink
}

// Value returns the icon of the active tab. A pending upload falls back to
// the icon class.
func (f IconField) Value() string {
	if f.Tab == TabLink {
		return f.Link
	}
	return f.Class
}

// ActionCard is one editable action.
type ActionCard struct {
	Kind   deck.ActionKind
	Params map[string]string
}

// NewCard returns a card of kind with its parameters blank.
func NewCard(kind deck.ActionKind) ActionCard {
	c := ActionCard{}
	c.SetKind(kind)
	return c
}

// SetKind switches the card's kind and reinitializes its parameters.
func (c *ActionCard) SetKind(kind deck.ActionKind) {
	c.Kind = kind
	c.Params = make(map[string]string)
	for _, p := range kind.Params() {
		c.Params[p] = ""
	}
}

// SetParam sets a parameter. Changing the scene of a source card clears
// the source, since sources belong to a scene.
func (c *ActionCard) SetParam(name, value string) {
	if c.Params == nil {
		c.Params = make(map[string]string)
	}
	if c.Kind == deck.ActionOBSSource && name == deck.ParamSceneName && c.Params[name] != value {
		c.Params[deck.ParamSourceName] = ""
	}
	c.Params[name] = value
}

// Param returns a parameter value.
func (c ActionCard) Param(name string) string {
	return c.Params[name]
}

// Action converts the card. It reports false for a card with no kind.
func (c ActionCard) Action() (deck.Action, bool) {
	if c.Kind == "" {
		return deck.Action{}, false
	}
	params := make(map[string]string, len(c.Params))
	for k, v := range c.Params {
		params[k] = v
	}
	return deck.Action{Type: c.Kind, Params: params}, true
}

// List selects one of the two action lists.
type List int

const (
	ListOn List = iota
	ListOff
)

// FormModel is the editable state of a button.
type FormModel struct {
	Label      string
	Icon       IconField
	IsStateful bool
	On         []ActionCard
	Off        []ActionCard
	// New is true when the slot had no configuration.
	New bool
}

// Build creates the form for cfg. A nil cfg yields a new-button form with
// one blank "on" card.
func Build(cfg *deck.ButtonConfig) FormModel {
	if cfg == nil {
		return FormModel{New: true, On: []ActionCard{{}}}
	}

	f := FormModel{
		Label:      cfg.Label,
		IsStateful: cfg.IsStateful,
	}
	if deck.IsImageRef(cfg.Icon) {
		f.Icon = IconField{Tab: TabLink, Link: cfg.Icon}
	} else {
		f.Icon = IconField{Tab: TabIcon, Class: cfg.Icon}
	}

	f.On = cardsFrom(cfg.ActionsOn)
	if cfg.IsStateful {
		f.Off = cardsFrom(cfg.ActionsOff)
	}
	return f
}

func cardsFrom(actions []deck.Action) []ActionCard {
	cards := make([]ActionCard, 0, len(actions))
	for _, a := range actions {
		card := ActionCard{Kind: a.Type, Params: make(map[string]string, len(a.Params))}
		for k, v := range a.Params {
			card.Params[k] = v
		}
		cards = append(cards, card)
	}
	return cards
}

// Read converts the form back into a button configuration.
func Read(f FormModel) deck.ButtonConfig {
	cfg := deck.ButtonConfig{
		Label:      f.Label,
		Icon:       f.Icon.Value(),
		IsStateful: f.IsStateful,
		ActionsOn:  actionsFrom(f.On),
		ActionsOff: []deck.Action{},
	}
	if f.IsStateful {
		cfg.ActionsOff = actionsFrom(f.Off)
	}
	return cfg
}

func actionsFrom(cards []ActionCard) []deck.Action {
	actions := []deck.Action{}
	for _, c := range cards {
		if a, ok := c.Action(); ok {
			actions = append(actions, a)
		}
	}
	return actions
}

// Cards returns the cards of a list.
func (f *FormModel) Cards(l List) []ActionCard {
	if l == ListOff {
		return f.Off
	}
	return f.On
}

// AddCard appends a blank card to a list and returns its index.
func (f *FormModel) AddCard(l List) int {
	if l == ListOff {
		f.Off = append(f.Off, ActionCard{})
		return len(f.Off) - 1
	}
	f.On = append(f.On, ActionCard{})
	return len(f.On) - 1
}

// RemoveCard deletes the card at i. Out-of-range indexes are ignored.
func (f *FormModel) RemoveCard(l List, i int) {
	cards := f.Cards(l)
	if i < 0 || i >= len(cards) {
		return
	}
	cards = append(cards[:i:i], cards[i+1:]...)
	if l == ListOff {
		f.Off = cards
	} else {
		f.On = cards
	}
}

// Card returns a pointer to the card at i for editing, or nil.
func (f *FormModel) Card(l List, i int) *ActionCard {
	cards := f.Cards(l)
	if i < 0 || i >= len(cards) {
		return nil
	}
	return &cards[i]
}
