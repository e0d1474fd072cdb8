package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harpiadesk/harpia/internal/deck"
	"github.com/harpiadesk/harpia/internal/editor"
)

// Messages the editor sends to the app.
type (
	editorSaveMsg struct {
		slot deck.SlotID
		form editor.FormModel
	}
	editorDeleteMsg struct{ slot deck.SlotID }
	editorUploadMsg struct{ path string }
	editorCloseMsg  struct{}
)

// uploadDoneMsg reports an icon upload back to the editor.
type uploadDoneMsg struct {
	url string
	err error
}

type rowKind int

const (
	rowLabel rowKind = iota
	rowIconTab
	rowIconValue
	rowStateful
	rowListHeader
	rowCardKind
	rowCardParam
)

// editorRow is one focusable line of the form.
type editorRow struct {
	kind  rowKind
	list  editor.List
	card  int
	param string
}

var paramNames = map[string]string{
	deck.ParamSceneName:  "Scene",
	deck.ParamSourceName: "Source",
	deck.ParamFileName:   "Sound file",
	deck.ParamKeysStr:    "Keys",
	deck.ParamHotkeyID:   "Hotkey",
	deck.ParamInputName:  "Audio input",
	deck.ParamDeckID:     "Deck",
}

type editorKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Toggle  key.Binding
	AddCard key.Binding
	DelCard key.Binding
	Upload  key.Binding
	Save    key.Binding
	Delete  key.Binding
	Cancel  key.Binding
}

func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Cancel, k.AddCard, k.DelCard, k.Delete}
}

func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Toggle},
		{k.AddCard, k.DelCard, k.Upload},
		{k.Save, k.Delete, k.Cancel},
	}
}

func newEditorKeyMap() editorKeyMap {
	return editorKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "shift+tab"), key.WithHelp("↑", "previous")),
		Down:    key.NewBinding(key.WithKeys("down", "tab"), key.WithHelp("↓", "next")),
		Left:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous option")),
		Right:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next option")),
		Toggle:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "toggle/capture")),
		AddCard: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "add action")),
		DelCard: key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "remove action")),
		Upload:  key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "upload icon")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Delete:  key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// EditorModel edits one button.
type EditorModel struct {
	Slot deck.SlotID
	Form editor.FormModel
	// Live feeds the pickers; the app refreshes it as snapshots arrive.
	Live editor.Live

	Keys editorKeyMap

	focus      int
	input      textinput.Model
	capturing  bool
	combo      editor.Combo
	uploadPath string
	armDelete  bool
	uploading  bool
	Err        error
}

// NewEditorModel opens the editor on form.
func NewEditorModel(slot deck.SlotID, form editor.FormModel, live editor.Live) EditorModel {
	in := textinput.New()
	in.CharLimit = 256
	in.Width = 40
	m := EditorModel{
		Slot:  slot,
		Form:  form,
		Live:  live,
		Keys:  newEditorKeyMap(),
		input: in,
	}
	m.loadInput()
	return m
}

// rows lists the focusable lines for the current form.
func (m EditorModel) rows() []editorRow {
	rows := []editorRow{{kind: rowLabel}, {kind: rowIconTab}, {kind: rowIconValue}, {kind: rowStateful}}
	lists := []editor.List{editor.ListOn}
	if m.Form.IsStateful {
		lists = append(lists, editor.ListOff)
	}
	for _, l := range lists {
		rows = append(rows, editorRow{kind: rowListHeader, list: l})
		for i, c := range m.Form.Cards(l) {
			rows = append(rows, editorRow{kind: rowCardKind, list: l, card: i})
			for _, p := range c.Kind.Params() {
				rows = append(rows, editorRow{kind: rowCardParam, list: l, card: i, param: p})
			}
		}
	}
	return rows
}

func (m EditorModel) current() editorRow {
	rows := m.rows()
	if m.focus >= len(rows) {
		return rows[len(rows)-1]
	}
	return rows[m.focus]
}

// isText reports whether a row is edited through the text input.
func (m EditorModel) isText(r editorRow) bool {
	switch r.kind {
	case rowLabel, rowIconValue:
		return true
	case rowCardParam:
		card := m.Form.Card(r.list, r.card)
		return card != nil && r.param != deck.ParamKeysStr && m.Live.Picker(*card, r.param) == nil
	}
	return false
}

func (m *EditorModel) loadInput() {
	r := m.current()
	if !m.isText(r) {
		m.input.Blur()
		return
	}
	var value string
	switch r.kind {
	case rowLabel:
		value = m.Form.Label
		m.input.Placeholder = "Label"
	case rowIconValue:
		switch m.Form.Icon.Tab {
		case editor.TabLink:
			value = m.Form.Icon.Link
			m.input.Placeholder = "https://… or /uploads/…"
		case editor.TabUpload:
			value = m.uploadPath
			m.input.Placeholder = "path to an image file"
		default:
			value = m.Form.Icon.Class
			m.input.Placeholder = "fa-solid fa-star"
		}
	case rowCardParam:
		value = m.Form.Card(r.list, r.card).Param(r.param)
		m.input.Placeholder = paramNames[r.param]
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *EditorModel) storeInput() {
	r := m.current()
	if !m.isText(r) {
		return
	}
	value := m.input.Value()
	switch r.kind {
	case rowLabel:
		m.Form.Label = value
	case rowIconValue:
		switch m.Form.Icon.Tab {
		case editor.TabLink:
			m.Form.Icon.Link = value
		case editor.TabUpload:
			m.uploadPath = value
		default:
			m.Form.Icon.Class = value
		}
	case rowCardParam:
		m.Form.Card(r.list, r.card).SetParam(r.param, value)
	}
}

func (m *EditorModel) setFocus(i int) {
	m.storeInput()
	n := len(m.rows())
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	m.focus = i
	m.armDelete = false
	m.loadInput()
}

// cycle moves a picker row by delta.
func (m *EditorModel) cycle(delta int) {
	r := m.current()
	switch r.kind {
	case rowIconTab:
		m.storeInput()
		tab := m.Form.Icon.Tab
		for i := 0; i < (3+delta%3)%3; i++ {
			tab = tab.Next()
		}
		m.Form.Icon.SelectTab(tab)
	case rowStateful:
		m.Form.IsStateful = !m.Form.IsStateful
	case rowCardKind:
		card := m.Form.Card(r.list, r.card)
		next := editor.Cycle(editor.KindOptions(), string(card.Kind), delta)
		card.SetKind(deck.ActionKind(next))
	case rowCardParam:
		card := m.Form.Card(r.list, r.card)
		if opts := m.Live.Picker(*card, r.param); opts != nil {
			card.SetParam(r.param, editor.Cycle(opts, card.Param(r.param), delta))
		}
	}
}

// Init starts the cursor blink.
func (m EditorModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles keys and upload results.
func (m EditorModel) Update(msg tea.Msg) (EditorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case uploadDoneMsg:
		m.uploading = false
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.Err = nil
		m.uploadPath = ""
		m.Form.Icon.CompleteUpload(msg.url)
		m.loadInput()
		return m, nil

	case tea.KeyMsg:
		if m.capturing {
			return m.capture(msg), nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m EditorModel) capture(msg tea.KeyMsg) EditorModel {
	r := m.current()
	card := m.Form.Card(r.list, r.card)
	switch msg.Type {
	case tea.KeyEnter:
		m.capturing = false
	case tea.KeyBackspace:
		m.combo.Clear()
	default:
		for _, name := range editor.TerminalKeyNames(msg.String()) {
			m.combo.Add(name)
		}
	}
	if card != nil {
		card.SetParam(deck.ParamKeysStr, m.combo.String())
	}
	return m
}

func (m EditorModel) handleKey(msg tea.KeyMsg) (EditorModel, tea.Cmd) {
	r := m.current()
	switch {
	case key.Matches(msg, m.Keys.Cancel):
		return m, func() tea.Msg { return editorCloseMsg{} }

	case key.Matches(msg, m.Keys.Save):
		m.storeInput()
		form := m.Form
		slot := m.Slot
		return m, func() tea.Msg { return editorSaveMsg{slot: slot, form: form} }

	case key.Matches(msg, m.Keys.Delete):
		if m.Form.New {
			return m, nil
		}
		if !m.armDelete {
			m.armDelete = true
			return m, nil
		}
		slot := m.Slot
		return m, func() tea.Msg { return editorDeleteMsg{slot: slot} }

	case key.Matches(msg, m.Keys.Upload):
		if r.kind != rowIconValue || m.Form.Icon.Tab != editor.TabUpload || m.uploading {
			return m, nil
		}
		m.storeInput()
		path := strings.TrimSpace(m.uploadPath)
		if path == "" {
			return m, nil
		}
		m.uploading = true
		return m, func() tea.Msg { return editorUploadMsg{path: path} }

	case key.Matches(msg, m.Keys.AddCard):
		l := editor.ListOn
		if r.kind != rowLabel && r.kind != rowIconTab && r.kind != rowIconValue && r.kind != rowStateful {
			l = r.list
		}
		m.storeInput()
		idx := m.Form.AddCard(l)
		m.focusCard(l, idx)
		return m, nil

	case key.Matches(msg, m.Keys.DelCard):
		if r.kind == rowCardKind || r.kind == rowCardParam {
			m.storeInput()
			m.Form.RemoveCard(r.list, r.card)
			if n := len(m.rows()); m.focus >= n {
				m.focus = n - 1
			}
			m.loadInput()
		}
		return m, nil

	case key.Matches(msg, m.Keys.Up):
		m.setFocus(m.focus - 1)
		return m, nil

	case key.Matches(msg, m.Keys.Down):
		m.setFocus(m.focus + 1)
		return m, nil
	}

	if m.isText(r) {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.storeInput()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Left):
		m.cycle(-1)
		m.loadInput()
	case key.Matches(msg, m.Keys.Right):
		m.cycle(1)
		m.loadInput()
	case key.Matches(msg, m.Keys.Toggle):
		switch r.kind {
		case rowListHeader:
			idx := m.Form.AddCard(r.list)
			m.focusCard(r.list, idx)
		case rowCardParam:
			if r.param == deck.ParamKeysStr {
				m.capturing = true
				m.combo = editor.Combo{}
			}
		default:
			m.cycle(1)
			m.loadInput()
		}
	}
	return m, nil
}

func (m *EditorModel) focusCard(l editor.List, idx int) {
	for i, r := range m.rows() {
		if r.kind == rowCardKind && r.list == l && r.card == idx {
			m.focus = i
			break
		}
	}
	m.loadInput()
}

// View renders the form.
func (m EditorModel) View() string {
	var b strings.Builder

	title := "Edit button " + m.Slot
	if m.Form.New {
		title = "New button " + m.Slot
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	for i, r := range m.rows() {
		line := m.renderRow(r, i == m.focus)
		if r.kind == rowListHeader {
			b.WriteString("\n")
		}
		if i == m.focus {
			b.WriteString(SelectedRowStyle.Render("› ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.capturing:
		b.WriteString(WarningTextStyle.Render("Press the keys of the shortcut, enter to finish, backspace to clear"))
	case m.uploading:
		b.WriteString(SubtitleStyle.Render("Uploading…"))
	case m.armDelete:
		b.WriteString(WarningTextStyle.Render("Press ctrl+d again to delete this button"))
	case m.Err != nil:
		b.WriteString(ErrorTextStyle.Render("✗ " + m.Err.Error()))
	}
	return b.String()
}

func (m EditorModel) renderRow(r editorRow, focused bool) string {
	field := func(name, value string) string {
		return LabelStyle.Render(fmt.Sprintf("%-12s", name)) + " " + value
	}
	textValue := func(v string) string {
		if focused {
			return m.input.View()
		}
		if v == "" {
			return SubtitleStyle.Render("(empty)")
		}
		return ValueStyle.Render(v)
	}

	switch r.kind {
	case rowLabel:
		return field("Label", textValue(m.Form.Label))
	case rowIconTab:
		tabs := make([]string, 0, 3)
		for _, t := range []editor.ImageSourceTab{editor.TabIcon, editor.TabLink, editor.TabUpload} {
			if t == m.Form.Icon.Tab {
				tabs = append(tabs, FocusedInputStyle.Render("["+t.String()+"]"))
			} else {
				tabs = append(tabs, LabelStyle.Render(" "+t.String()+" "))
			}
		}
		return field("Icon source", strings.Join(tabs, " "))
	case rowIconValue:
		switch m.Form.Icon.Tab {
		case editor.TabLink:
			return field("Image URL", textValue(m.Form.Icon.Link))
		case editor.TabUpload:
			return field("Upload file", textValue(m.uploadPath))
		default:
			return field("Icon class", textValue(m.Form.Icon.Class)+" "+IconGlyph(deck.ClassifyIcon(m.Form.Icon.Class)))
		}
	case rowStateful:
		check := "[ ]"
		if m.Form.IsStateful {
			check = "[x]"
		}
		return field("Stateful", ValueStyle.Render(check))
	case rowListHeader:
		name := "Actions"
		if m.Form.IsStateful {
			name = "Actions ON"
			if r.list == editor.ListOff {
				name = "Actions OFF"
			}
		}
		return TitleStyle.Render(name) + LabelStyle.Render(fmt.Sprintf(" (%d)", len(m.Form.Cards(r.list))))
	case rowCardKind:
		card := m.Form.Card(r.list, r.card)
		label := editor.Placeholder
		if card.Kind != "" {
			label = card.Kind.Group() + ": " + card.Kind.Label()
		}
		return field(fmt.Sprintf("%d. Type", r.card+1), ValueStyle.Render("‹ "+label+" ›"))
	case rowCardParam:
		card := m.Form.Card(r.list, r.card)
		name := "   " + paramNames[r.param]
		value := card.Param(r.param)
		if r.param == deck.ParamKeysStr {
			combo := editor.ParseCombo(value)
			if m.capturing && focused {
				combo = m.combo
			}
			shown := combo.Friendly()
			if shown == "" {
				shown = SubtitleStyle.Render("(enter to record)")
			}
			return field(name, ValueStyle.Render(shown))
		}
		if opts := m.Live.Picker(*card, r.param); opts != nil {
			return field(name, ValueStyle.Render("‹ "+optionLabel(opts, value)+" ›"))
		}
		return field(name, textValue(value))
	}
	return ""
}

func optionLabel(opts []editor.Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
