// Package tui is the terminal control panel.
//
// The deck screen draws the current deck as a 4x4 grid, runs buttons in
// normal mode and opens the button editor in edit mode. A side column shows
// the upstream service status, the stream stats with the uptime clock, the
// channel info and the activity feed.
//
// Every screen renders through RenderApplicationContainer so header and
// footer stay consistent:
//
//	func (m Model) View() string {
//	    return RenderApplicationContainer(m.content(), m.help(), m.Width, m.Height)
//	}
//
// Panel callbacks arrive on other goroutines and are forwarded into the
// bubbletea program as messages; models never touch the panel's store
// from a callback.
package tui
