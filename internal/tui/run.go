package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harpiadesk/harpia/internal/api"
	"github.com/harpiadesk/harpia/internal/live"
	"github.com/harpiadesk/harpia/internal/panel"
	"github.com/harpiadesk/harpia/internal/transport"
)

// Options configures Run.
type Options struct {
	ServerURL string
	Session   string
	// Timeout overrides the HTTP request timeout when set.
	Timeout time.Duration
	// NoSocket skips the dashboard socket. Writes are then followed by a
	// configuration re-fetch and button presses are not sent.
	NoSocket bool
}

// Run starts the control panel and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := api.NewClient(opts.ServerURL, opts.Session)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	br := newBridge()
	defer br.close()

	p := panel.New(client, br.panelOptions())
	defer func() { _ = p.Close() }()

	var sock Socket
	if !opts.NoSocket {
		wsURL, err := transport.DashboardURL(opts.ServerURL)
		if err != nil {
			return err
		}
		sock = Socket{URL: wsURL, Header: transport.SessionHeader(opts.Session)}
	}

	stats := live.NewStatsPoller(client, live.NewUptime(), nil)
	model := NewAppModel(ctx, p, stats, client, sock, opts.ServerURL)

	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	go br.run(prog)

	if _, err := prog.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("control panel failed: %w", err)
	}
	return nil
}
