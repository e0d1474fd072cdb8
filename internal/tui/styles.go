package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/harpiadesk/harpia/internal/render"
	"github.com/harpiadesk/harpia/internal/version"
)

const AppName = "HARPIA DECK"

// Layout constants
const (
	MinTerminalWidth = 72
	SideColumnWidth  = 34
	CellWidth        = 14
	CellHeight       = 4 // lines per cell, borders included
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5555") // Red

	TextColor      = lipgloss.Color("#FFFFFF")
	SubtleColor    = lipgloss.Color("#626262")
	BorderColor    = lipgloss.Color("#7D56F4")
	HighlightColor = lipgloss.Color("#43BF6D")

	// Category accents mirror the web dashboard's button tints.
	SoundColor  = lipgloss.Color("#E5C07B")
	HotkeyColor = lipgloss.Color("#61AFEF")
	OBSColor    = lipgloss.Color("#C678DD")
	VTSColor    = lipgloss.Color("#FF8B94")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	OnlineStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	OfflineStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	WarningTextStyle = lipgloss.NewStyle().
				Foreground(WarningColor)

	SuccessTextStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(HighlightColor).
				Bold(true)

	RowStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	FocusedInputStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1)

	// EditModeBadge marks the grid while edit mode is on.
	EditModeBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(WarningColor).
			Bold(true).
			Padding(0, 1)
)

// CategoryColor returns the accent of a button category.
func CategoryColor(c render.Category) lipgloss.Color {
	switch c {
	case render.CategorySound:
		return SoundColor
	case render.CategoryHotkey:
		return HotkeyColor
	case render.CategoryOBS:
		return OBSColor
	case render.CategoryVTS:
		return VTSColor
	default:
		return SubtleColor
	}
}

// Truncate cuts s to width terminal cells, ending in "…" when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// BuildHeaderContent shows the app name, version and the server in use.
func BuildHeaderContent(server string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " " + version.Version)
	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(server)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderApplicationContainer wraps a screen in the shared frame: header on
// top, help footer at the bottom, filling the terminal.
func RenderApplicationContainer(server, content, footerText string, terminalWidth, terminalHeight int) string {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}
	if terminalHeight < 10 {
		terminalHeight = 10
	}

	header := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1).
		Render(BuildHeaderContent(server))

	footer := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1).
		Foreground(SubtleColor).
		Render(footerText)

	body := lipgloss.NewStyle().
		Width(terminalWidth - 4).
		Render(content)

	inner := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}

// RenderSection draws a titled box of the given outer width.
func RenderSection(title, body string, width int) string {
	content := TitleStyle.Render(title)
	if body != "" {
		content += "\n" + body
	}
	return SectionStyle.Width(width - 2).Render(strings.TrimRight(content, "\n"))
}
