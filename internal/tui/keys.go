package tui

import "github.com/charmbracelet/bubbles/key"

// deckKeyMap defines key bindings for the deck screen
type deckKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Press     key.Binding
	Edit      key.Binding
	Move      key.Binding
	Home      key.Binding
	ReconnOBS key.Binding
	ReconnVTS key.Binding
	Reload    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k deckKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Press, k.Edit, k.Move, k.Home, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k deckKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Press, k.Edit, k.Move, k.Home},
		{k.ReconnOBS, k.ReconnVTS, k.Reload},
		{k.Help, k.Quit},
	}
}

func newDeckKeyMap() deckKeyMap {
	return deckKeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Press:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "press")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit mode")),
		Move:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		Home:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "main deck")),
		ReconnOBS: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "reconnect OBS")),
		ReconnVTS: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "reconnect VTS")),
		Reload:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}
