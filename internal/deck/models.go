package deck

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DeckID names a deck (folder). RootDeck is the well-known default.
type DeckID = string

// RootDeck is the deck used when nothing else is valid.
const RootDeck DeckID = "root"

// Configuration is the root of the deck configuration tree.
type Configuration struct {
	Decks    map[DeckID]Buttons `json:"decks"`
	Settings Settings           `json:"settings"`
}

// Settings holds deck-wide settings.
type Settings struct {
	StartDeck DeckID `json:"start_deck,omitempty"`
}

// Buttons maps slot ids to button configurations for one deck.
type Buttons map[SlotID]ButtonConfig

// ButtonConfig is the configuration of a single deck button.
type ButtonConfig struct {
	Label      string   `json:"label"`
	Icon       string   `json:"icon"`
	IsStateful bool     `json:"is_stateful"`
	ActionsOn  []Action `json:"actions_on"`
	ActionsOff []Action `json:"actions_off"`
}

// Action is one step run when a button is pressed.
type Action struct {
	Type   ActionKind        `json:"type"`
	Params map[string]string `json:"params"`
}

// Param returns the named parameter, or "" when absent.
func (a Action) Param(name string) string {
	if a.Params == nil {
		return ""
	}
	return a.Params[name]
}

// NewConfiguration returns an empty configuration with a root deck.
func NewConfiguration() *Configuration {
	return &Configuration{
		Decks:    map[DeckID]Buttons{RootDeck: {}},
		Settings: Settings{StartDeck: RootDeck},
	}
}

// Parse decodes a configuration from JSON, tolerating null decks.
func Parse(data []byte) (*Configuration, error) {
	var cfg Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid deck configuration: %w", err)
	}
	if cfg.Decks == nil {
		cfg.Decks = make(map[DeckID]Buttons)
	}
	return &cfg, nil
}

// HasDeck reports whether the deck exists.
func (c *Configuration) HasDeck(id DeckID) bool {
	if c == nil || c.Decks == nil {
		return false
	}
	_, ok := c.Decks[id]
	return ok
}

// Deck returns the buttons of a deck, or nil when it does not exist.
func (c *Configuration) Deck(id DeckID) Buttons {
	if c == nil || c.Decks == nil {
		return nil
	}
	return c.Decks[id]
}

// DeckIDs returns the deck ids sorted, root first.
func (c *Configuration) DeckIDs() []DeckID {
	if c == nil {
		return nil
	}
	ids := make([]DeckID, 0, len(c.Decks))
	for id := range c.Decks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i] == RootDeck || ids[j] == RootDeck {
			return ids[i] == RootDeck
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Clone returns a deep copy of the configuration.
func (c *Configuration) Clone() *Configuration {
	if c == nil {
		return nil
	}
	out := &Configuration{
		Decks:    make(map[DeckID]Buttons, len(c.Decks)),
		Settings: c.Settings,
	}
	for id, buttons := range c.Decks {
		out.Decks[id] = buttons.Clone()
	}
	return out
}

// Clone returns a deep copy of the deck's buttons.
func (b Buttons) Clone() Buttons {
	if b == nil {
		return nil
	}
	out := make(Buttons, len(b))
	for slot, cfg := range b {
		out[slot] = cfg.Clone()
	}
	return out
}

// Clone returns a deep copy of the button configuration.
func (b ButtonConfig) Clone() ButtonConfig {
	out := b
	out.ActionsOn = cloneActions(b.ActionsOn)
	out.ActionsOff = cloneActions(b.ActionsOff)
	return out
}

func cloneActions(actions []Action) []Action {
	if actions == nil {
		return nil
	}
	out := make([]Action, len(actions))
	for i, a := range actions {
		out[i] = Action{Type: a.Type}
		if a.Params != nil {
			out[i].Params = make(map[string]string, len(a.Params))
			for k, v := range a.Params {
				out[i].Params[k] = v
			}
		}
	}
	return out
}

// MarshalJSON always emits both action lists, using [] for empty ones.
func (b ButtonConfig) MarshalJSON() ([]byte, error) {
	type alias ButtonConfig
	out := alias(b)
	if out.ActionsOn == nil {
		out.ActionsOn = []Action{}
	}
	if out.ActionsOff == nil {
		out.ActionsOff = []Action{}
	}
	return json.Marshal(out)
}

// MarshalJSON always emits a params object.
func (a Action) MarshalJSON() ([]byte, error) {
	type alias Action
	out := alias(a)
	if out.Params == nil {
		out.Params = map[string]string{}
	}
	return json.Marshal(out)
}

// ValidationIssue describes a problem found by Validate.
type ValidationIssue struct {
	Deck   DeckID
	Slot   SlotID
	Index  int
	List   string
	Detail string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s/%s %s[%d]: %s", v.Deck, v.Slot, v.List, v.Index, v.Detail)
}

// Validate reports actions with an unknown kind or missing required
// parameters, and slot ids outside the grid. It never modifies the
// configuration; issues are diagnostics only.
func (c *Configuration) Validate() []ValidationIssue {
	var issues []ValidationIssue
	for _, deckID := range c.DeckIDs() {
		buttons := c.Decks[deckID]
		slots := make([]SlotID, 0, len(buttons))
		for slot := range buttons {
			slots = append(slots, slot)
		}
		sort.Strings(slots)
		for _, slot := range slots {
			if _, ok := SlotIndex(slot); !ok {
				issues = append(issues, ValidationIssue{Deck: deckID, Slot: slot, Index: -1, List: "slot", Detail: "slot id outside the grid"})
			}
			cfg := buttons[slot]
			issues = append(issues, validateList(deckID, slot, "actions_on", cfg.ActionsOn)...)
			if cfg.IsStateful {
				issues = append(issues, validateList(deckID, slot, "actions_off", cfg.ActionsOff)...)
			}
		}
	}
	return issues
}

func validateList(deckID DeckID, slot SlotID, list string, actions []Action) []ValidationIssue {
	var issues []ValidationIssue
	for i, a := range actions {
		if !a.Type.Known() {
			issues = append(issues, ValidationIssue{Deck: deckID, Slot: slot, Index: i, List: list, Detail: fmt.Sprintf("unknown action kind %q", a.Type)})
			continue
		}
		var missing []string
		for _, p := range a.Type.RequiredParams() {
			if strings.TrimSpace(a.Param(p)) == "" {
				missing = append(missing, p)
			}
		}
		if len(missing) > 0 {
			issues = append(issues, ValidationIssue{Deck: deckID, Slot: slot, Index: i, List: list, Detail: fmt.Sprintf("%s missing %s", a.Type, strings.Join(missing, ", "))})
		}
	}
	return issues
}
