package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harpiadesk/harpia/internal/deck"
	"github.com/harpiadesk/harpia/internal/render"
	"github.com/harpiadesk/harpia/internal/store"
)

// NoSlot marks the absence of a move source.
const NoSlot = -1

// GridState is everything the grid drawing depends on.
type GridState struct {
	Views  []render.SlotView
	Cursor int
	// Moving is the slot picked up for a move, or NoSlot.
	Moving int
	Mode   store.ViewMode
	// Busy marks slots with a request in flight.
	Busy map[deck.SlotID]bool
}

// iconGlyphs maps icon font names to terminal symbols.
var iconGlyphs = map[string]string{
	"fa-microphone":       "◉",
	"fa-microphone-slash": "◎",
	"fa-volume-high":      "♪",
	"fa-volume-xmark":     "♪",
	"fa-music":            "♫",
	"fa-play":             "▶",
	"fa-stop":             "■",
	"fa-circle":           "●",
	"fa-video":            "▣",
	"fa-video-slash":      "▢",
	"fa-star":             "★",
	"fa-heart":            "♥",
	"fa-keyboard":         "⌨",
	"fa-arrow-left":       "←",
	"fa-arrow-right":      "→",
	"fa-folder":           "▤",
	"fa-folder-open":      "▤",
	"fa-eye":              "◐",
	"fa-eye-slash":        "◑",
	"fa-question":         "?",
}

// IconGlyph picks a one-cell symbol for an icon. Images draw as a frame.
func IconGlyph(icon deck.Icon) string {
	if icon.Kind == deck.IconImage {
		return "▣"
	}
	for _, token := range strings.Fields(icon.Value) {
		if g, ok := iconGlyphs[token]; ok {
			return g
		}
	}
	return "◆"
}

// MoveCursor moves the grid cursor by dx columns and dy rows, staying on
// the grid.
func MoveCursor(cursor, dx, dy int) int {
	row := cursor / deck.GridColumns
	col := cursor % deck.GridColumns
	rows := deck.GridSize / deck.GridColumns

	col += dx
	row += dy
	if col < 0 {
		col = 0
	}
	if col >= deck.GridColumns {
		col = deck.GridColumns - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= rows {
		row = rows - 1
	}
	return row*deck.GridColumns + col
}

// RenderGrid draws the deck grid.
func RenderGrid(g GridState) string {
	rows := make([]string, 0, deck.GridSize/deck.GridColumns)
	for start := 0; start < len(g.Views); start += deck.GridColumns {
		end := start + deck.GridColumns
		if end > len(g.Views) {
			end = len(g.Views)
		}
		cells := make([]string, 0, deck.GridColumns)
		for i := start; i < end; i++ {
			cells = append(cells, renderCell(g, i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCell(g GridState, i int) string {
	v := g.Views[i]
	inner := CellWidth - 2

	var top, bottom string
	switch {
	case g.Busy[v.Slot]:
		top, bottom = "…", Truncate(v.Label, inner)
	case v.Empty && g.Mode == store.ModeEdit:
		top, bottom = "+", ""
	case v.Empty:
		top, bottom = "", ""
	default:
		top, bottom = IconGlyph(v.Icon), Truncate(v.Label, inner)
	}

	accent := CategoryColor(v.Category)
	text := lipgloss.NewStyle().Width(inner).Align(lipgloss.Center)
	if v.Empty {
		text = text.Foreground(SubtleColor)
	} else {
		text = text.Foreground(TextColor)
	}
	if v.Active {
		text = text.Background(accent).Foreground(lipgloss.Color("#1A1A1A")).Bold(true)
	}

	border := lipgloss.RoundedBorder()
	borderColor := accent
	switch {
	case i == g.Moving:
		border = lipgloss.DoubleBorder()
		borderColor = WarningColor
	case i == g.Cursor:
		border = lipgloss.ThickBorder()
		borderColor = HighlightColor
	}

	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(borderColor).
		Render(lipgloss.JoinVertical(lipgloss.Left, text.Render(top), text.Render(bottom)))
}
