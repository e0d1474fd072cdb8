package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/harpiadesk/harpia/internal/api"
	"github.com/harpiadesk/harpia/internal/deck"
	"github.com/harpiadesk/harpia/internal/live"
	"github.com/harpiadesk/harpia/internal/logging"
	"github.com/harpiadesk/harpia/internal/panel"
	"github.com/harpiadesk/harpia/internal/protocol"
	"github.com/harpiadesk/harpia/internal/render"
	"github.com/harpiadesk/harpia/internal/store"
)

// Screen represents the current active screen in the application
type Screen int

const (
	ScreenDeck Screen = iota
	ScreenEditor
)

// redialDelay is the wait before reopening a dropped socket.
const redialDelay = 3 * time.Second

// feedLines is how many activity entries the side column shows.
const feedLines = 8

// ChannelSource provides the channel metadata shown beside the grid.
type ChannelSource interface {
	ChannelInfo(ctx context.Context) (*api.ChannelInfo, error)
}

// Socket opens the dashboard socket for the panel.
type Socket struct {
	URL    string
	Header http.Header
}

// AppModel is the top-level model.
type AppModel struct {
	ctx     context.Context
	panel   *panel.Panel
	stats   *live.StatsPoller
	channel ChannelSource
	socket  Socket
	server  string

	Screen Screen
	Width  int
	Height int

	Cursor int
	Moving int
	Views  []render.SlotView

	Editor EditorModel

	channelInfo    *api.ChannelInfo
	loading        bool
	connected      bool
	sessionExpired bool
	notice         string
	noticeErr      bool

	Spinner  spinner.Model
	Help     help.Model
	Keys     deckKeyMap
	ShowHelp bool
}

// NewAppModel creates the model. stats and channel may be nil, which hides
// the matching side sections.
func NewAppModel(ctx context.Context, p *panel.Panel, stats *live.StatsPoller, channel ChannelSource, sock Socket, server string) AppModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return AppModel{
		ctx:     ctx,
		panel:   p,
		stats:   stats,
		channel: channel,
		socket:  sock,
		server:  server,
		Moving:  NoSlot,
		Views:   p.Renderer().Views(),
		loading: true,
		Width:   MinTerminalWidth + SideColumnWidth,
		Height:  30,
		Spinner: s,
		Help:    help.New(),
		Keys:    newDeckKeyMap(),
	}
}

// Init loads the configuration and starts the socket, stats and clock.
func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCmd(), m.Spinner.Tick, clockTick()}
	if m.socket.URL != "" {
		cmds = append(cmds, m.connectCmd())
	}
	if m.stats != nil {
		cmds = append(cmds, m.statsCmd())
	}
	if m.channel != nil {
		cmds = append(cmds, m.channelCmd())
	}
	return tea.Batch(cmds...)
}

func (m AppModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.panel.Load(m.ctx)}
	}
}

func (m AppModel) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.panel.Reload(m.ctx)}
	}
}

func (m AppModel) connectCmd() tea.Cmd {
	return func() tea.Msg {
		done, err := m.panel.Connect(m.ctx, m.socket.URL, m.socket.Header)
		return connectedMsg{done: done, err: err}
	}
}

func waitClosed(done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return socketClosedMsg{err: <-done}
	}
}

func (m AppModel) statsCmd() tea.Cmd {
	return func() tea.Msg {
		return statsMsg(m.stats.Refresh(m.ctx))
	}
}

func (m AppModel) channelCmd() tea.Cmd {
	return func() tea.Msg {
		info, err := m.channel.ChannelInfo(m.ctx)
		return channelMsg{info: info, err: err}
	}
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

// opCmd runs a panel write off the UI goroutine.
func opCmd(op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn()}
	}
}

// Update handles all messages and routes them to the active screen.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case clockTickMsg:
		return m, clockTick()

	case renderMsg:
		m.Views = msg
		if m.Screen == ScreenEditor {
			m.Editor.Live = m.panel.EditorLive()
		}
		return m, nil

	case statusMsg:
		return m, nil

	case activityMsg:
		return m, nil

	case sessionExpiredMsg:
		m.sessionExpired = true
		m.Screen = ScreenDeck
		m.setNotice("Session expired: export a fresh HARPIA_SESSION and press ctrl+r", true)
		return m, nil

	case loadedMsg:
		m.loading = false
		m.Views = m.panel.Renderer().Views()
		if msg.err != nil {
			m.setNotice(api.GetShortErrorMessage(unwrapAPI(msg.err)), true)
		} else if !m.sessionExpired {
			m.setNotice("", false)
		}
		return m, nil

	case connectedMsg:
		if msg.err != nil {
			m.connected = false
			logging.Warn("Socket connect failed", zap.Error(msg.err))
			if api.IsSessionExpired(msg.err) {
				return m, nil
			}
			return m, tea.Tick(redialDelay, func(time.Time) tea.Msg { return redialMsg{} })
		}
		m.connected = true
		return m, waitClosed(msg.done)

	case socketClosedMsg:
		m.connected = false
		if m.ctx.Err() != nil || m.sessionExpired {
			return m, nil
		}
		return m, tea.Tick(redialDelay, func(time.Time) tea.Msg { return redialMsg{} })

	case redialMsg:
		if m.connected || m.sessionExpired || m.ctx.Err() != nil {
			return m, nil
		}
		return m, m.connectCmd()

	case statsMsg:
		return m, tea.Tick(live.StatsInterval, func(time.Time) tea.Msg { return statsTickMsg{} })

	case statsTickMsg:
		return m, m.statsCmd()

	case channelMsg:
		if msg.err == nil {
			m.channelInfo = msg.info
		}
		return m, nil

	case pressedMsg:
		return m.handlePress(msg.res)

	case opDoneMsg:
		if msg.err != nil {
			m.setNotice(fmt.Sprintf("%s failed: %s", msg.op, api.GetShortErrorMessage(unwrapAPI(msg.err))), true)
			return m, nil
		}
		m.setNotice(msg.op+" done", false)
		if m.Screen == ScreenEditor && (msg.op == "Save" || msg.op == "Delete") {
			m.Screen = ScreenDeck
		}
		return m, nil
	}

	if m.Screen == ScreenEditor {
		return m.updateEditor(msg)
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		return m.handleDeckKey(keyMsg)
	}
	return m, nil
}

func (m *AppModel) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m AppModel) handleDeckKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Help):
		m.ShowHelp = !m.ShowHelp
		m.Help.ShowAll = m.ShowHelp
	case key.Matches(msg, m.Keys.Up):
		m.Cursor = MoveCursor(m.Cursor, 0, -1)
	case key.Matches(msg, m.Keys.Down):
		m.Cursor = MoveCursor(m.Cursor, 0, 1)
	case key.Matches(msg, m.Keys.Left):
		m.Cursor = MoveCursor(m.Cursor, -1, 0)
	case key.Matches(msg, m.Keys.Right):
		m.Cursor = MoveCursor(m.Cursor, 1, 0)

	case key.Matches(msg, m.Keys.Press):
		slot := deck.Slot(m.Cursor)
		p := m.panel
		return m, func() tea.Msg { return pressedMsg{res: p.Press(slot)} }

	case key.Matches(msg, m.Keys.Edit):
		m.Moving = NoSlot
		mode := m.panel.ToggleEditMode()
		if mode == store.ModeEdit {
			m.setNotice("Edit mode: enter edits a button, m moves it", false)
		} else {
			m.setNotice("", false)
		}

	case key.Matches(msg, m.Keys.Move):
		if m.panel.Store().Mode() != store.ModeEdit {
			return m, nil
		}
		if m.Moving == NoSlot {
			m.Moving = m.Cursor
			return m, nil
		}
		from, to := deck.Slot(m.Moving), deck.Slot(m.Cursor)
		m.Moving = NoSlot
		if from == to {
			return m, nil
		}
		p, ctx := m.panel, m.ctx
		return m, opCmd("Move", func() error { return p.Move(ctx, from, to) })

	case key.Matches(msg, m.Keys.Home):
		if m.Moving != NoSlot {
			m.Moving = NoSlot
			return m, nil
		}
		if m.panel.Store().CurrentDeck() != deck.RootDeck {
			m.panel.Store().Navigate(deck.RootDeck)
		}

	case key.Matches(msg, m.Keys.ReconnOBS):
		return m, m.reconnectCmd(protocol.ServiceOBS)
	case key.Matches(msg, m.Keys.ReconnVTS):
		return m, m.reconnectCmd(protocol.ServiceVTS)

	case key.Matches(msg, m.Keys.Reload):
		m.sessionExpired = false
		m.loading = true
		m.setNotice("", false)
		cmds := []tea.Cmd{m.reloadCmd()}
		if !m.connected && m.socket.URL != "" {
			cmds = append(cmds, m.connectCmd())
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m AppModel) reconnectCmd(s protocol.Service) tea.Cmd {
	p := m.panel
	return opCmd("Reconnect "+strings.ToUpper(string(s)), func() error { return p.Reconnect(s) })
}

func (m AppModel) handlePress(res panel.PressResult) (tea.Model, tea.Cmd) {
	switch res.Kind {
	case render.ClickOpenEditor:
		m.Screen = ScreenEditor
		m.Editor = NewEditorModel(res.Slot, *res.Form, m.panel.EditorLive())
		return m, m.Editor.Init()
	case render.ClickExecute:
		if !m.panel.Connected() {
			m.setNotice("Not connected: actions are not being sent", true)
		}
	}
	return m, nil
}

func (m AppModel) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	p, ctx := m.panel, m.ctx
	switch msg := msg.(type) {
	case editorCloseMsg:
		m.Screen = ScreenDeck
		return m, nil

	case editorSaveMsg:
		return m, opCmd("Save", func() error { return p.Save(ctx, msg.slot, msg.form) })

	case editorDeleteMsg:
		return m, opCmd("Delete", func() error { return p.Delete(ctx, msg.slot) })

	case editorUploadMsg:
		return m, func() tea.Msg {
			f, err := os.Open(msg.path)
			if err != nil {
				return uploadDoneMsg{err: fmt.Errorf("failed to open %s: %w", msg.path, err)}
			}
			defer func() { _ = f.Close() }()
			url, err := p.Upload(ctx, filepath.Base(msg.path), f)
			return uploadDoneMsg{url: url, err: err}
		}
	}

	var cmd tea.Cmd
	m.Editor, cmd = m.Editor.Update(msg)
	return m, cmd
}

// unwrapAPI digs the APIError out of a wrapped panel error so its short
// message can be shown.
func unwrapAPI(err error) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return err
}

// View renders the current screen.
func (m AppModel) View() string {
	switch m.Screen {
	case ScreenEditor:
		footer := m.Help.View(m.Editor.Keys)
		return RenderApplicationContainer(m.server, m.Editor.View(), footer, m.Width, m.Height)
	default:
		return RenderApplicationContainer(m.server, m.deckContent(), m.Help.View(m.Keys), m.Width, m.Height)
	}
}

func (m AppModel) deckContent() string {
	snap := m.panel.Store().Snapshot()

	busy := make(map[deck.SlotID]bool)
	for _, slot := range deck.Slots() {
		busy[slot] = m.panel.SlotBusy(slot)
	}

	title := TitleStyle.Render("Deck: " + snap.CurrentDeck)
	if snap.Mode == store.ModeEdit {
		title += " " + EditModeBadge.Render("EDIT")
	}
	if m.loading || m.panel.Pending().Any() {
		title += " " + m.Spinner.View()
	}

	grid := RenderGrid(GridState{
		Views:  m.Views,
		Cursor: m.Cursor,
		Moving: m.Moving,
		Mode:   snap.Mode,
		Busy:   busy,
	})

	left := lipgloss.JoinVertical(lipgloss.Left, title, grid, m.noticeLine())
	if m.Width-4 < lipgloss.Width(left)+SideColumnWidth {
		return left
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", m.sideColumn())
}

func (m AppModel) noticeLine() string {
	switch {
	case m.notice == "":
		return ""
	case m.noticeErr:
		return ErrorTextStyle.Render("✗ " + m.notice)
	default:
		return SuccessTextStyle.Render(m.notice)
	}
}

func (m AppModel) sideColumn() string {
	sections := []string{RenderSection("Services", m.servicesBody(), SideColumnWidth)}
	if m.stats != nil {
		sections = append(sections, RenderSection("Stream", m.streamBody(), SideColumnWidth))
	}
	if m.channelInfo != nil {
		body := Truncate(m.channelInfo.Title, SideColumnWidth-4) + "\n" +
			LabelStyle.Render(Truncate(m.channelInfo.Category, SideColumnWidth-4))
		sections = append(sections, RenderSection("Channel", body, SideColumnWidth))
	}
	sections = append(sections, RenderSection("Activity", m.feedBody(), SideColumnWidth))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m AppModel) servicesBody() string {
	lines := []string{m.socketLine()}
	board := m.panel.Status()
	for _, st := range board.All() {
		name := strings.ToUpper(string(st.Service))
		var state string
		switch {
		case !st.Known:
			state = LabelStyle.Render("○ unknown")
		case st.Connected:
			state = OnlineStyle.Render("● connected")
		default:
			state = OfflineStyle.Render("● disconnected")
			if board.CanReconnect(st.Service) {
				state += LabelStyle.Render(" (" + strings.ToLower(name[:1]) + ")")
			}
		}
		lines = append(lines, fmt.Sprintf("%-4s %s", name, state))
	}
	return strings.Join(lines, "\n")
}

func (m AppModel) socketLine() string {
	if m.connected {
		return "WS   " + OnlineStyle.Render("● live")
	}
	return "WS   " + OfflineStyle.Render("● offline")
}

func (m AppModel) streamBody() string {
	st := m.stats.Stats()
	if st.UpdatedAt.IsZero() {
		return LabelStyle.Render("loading…")
	}
	if st.Err != nil {
		return ErrorTextStyle.Render(Truncate(api.GetShortErrorMessage(unwrapAPI(st.Err)), SideColumnWidth-4))
	}
	status := OfflineStyle.Render("OFFLINE")
	if st.Online {
		status = OnlineStyle.Render("LIVE")
	}
	return fmt.Sprintf("%s  %s viewers\n%s %s",
		status,
		humanize.Comma(int64(st.Viewers)),
		LabelStyle.Render("Uptime"),
		m.stats.Uptime().String(),
	)
}

func (m AppModel) feedBody() string {
	items := m.panel.Feed().Items()
	if len(items) == 0 {
		return LabelStyle.Render("Nothing yet")
	}
	if len(items) > feedLines {
		items = items[:feedLines]
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		age := LabelStyle.Render(humanize.Time(it.At))
		lines = append(lines, Truncate(it.Message, SideColumnWidth-4)+"\n  "+age)
	}
	return strings.Join(lines, "\n")
}
