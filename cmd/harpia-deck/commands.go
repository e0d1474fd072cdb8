package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/harpiadesk/harpia/internal/config"
	"github.com/harpiadesk/harpia/internal/deck"
	"github.com/harpiadesk/harpia/internal/discovery"
	"github.com/harpiadesk/harpia/internal/panel"
	"github.com/harpiadesk/harpia/internal/protocol"
	"github.com/harpiadesk/harpia/internal/render"
	"github.com/harpiadesk/harpia/internal/store"
	"github.com/harpiadesk/harpia/internal/transport"
	"github.com/harpiadesk/harpia/internal/tui"
)

// Command-specific flags
var (
	noSocket bool

	scanTimeout time.Duration
	scanDefault string

	showDeck  string
	showCheck bool
	showJSON  bool

	pressDeck string

	deleteDeck string
	deleteYes  bool
)

func init() {
	rootCmd.Flags().BoolVar(&noSocket, "no-socket", false, "Do not open the dashboard socket (read and edit only)")

	scanCmd.Flags().DurationVarP(&scanTimeout, "timeout", "t", discovery.DefaultScanTimeout, "How long to browse the network")
	scanCmd.Flags().StringVar(&scanDefault, "default", "", "Make the named server the default")

	showCmd.Flags().StringVarP(&showDeck, "deck", "d", "", "Deck to show (default: the start deck)")
	showCmd.Flags().BoolVar(&showCheck, "check", false, "Validate the whole configuration and report problems")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the raw configuration as JSON")

	pressCmd.Flags().StringVarP(&pressDeck, "deck", "d", "", "Deck holding the button (default: the start deck)")

	deleteCmd.Flags().StringVarP(&deleteDeck, "deck", "d", "", "Deck holding the button (default: the start deck)")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(pressCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runPanel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	url, err := serverURL(ctx)
	if err != nil {
		return err
	}
	if config.Session() == "" {
		return fmt.Errorf("no session cookie: export %s from a logged-in dashboard", config.SessionEnv)
	}
	return tui.Run(ctx, tui.Options{
		ServerURL: url,
		Session:   config.Session(),
		NoSocket:  noSocket,
		Timeout:   httpTimeout,
	})
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find harpia servers on the local network",
	Long: `Browse the local network for harpia servers advertised over mDNS.

Every server found is remembered in the settings file, so it can be picked
later with --server <name>.`,
	Example: `  # Browse for 5 seconds
  harpia-deck scan

  # Browse longer and make the studio server the default
  harpia-deck scan --timeout 10s --default studio`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Browsing for %s services (%s)...\n\n", discovery.ServiceType, scanTimeout)

	servers, err := discovery.Scan(cmd.Context(), scanTimeout)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if len(servers) == 0 {
		fmt.Println("No servers found.")
		fmt.Println()
		fmt.Println("Troubleshooting:")
		fmt.Println("  - Check the server is running and advertising mDNS")
		fmt.Println("  - Make sure this machine is on the same network")
		fmt.Println("  - Firewalls must allow UDP port 5353")
		fmt.Println("  - Pass the address directly with --server http://host:port")
		return nil
	}

	fmt.Printf("Found %d server(s):\n\n", len(servers))
	for _, s := range servers {
		registry.RememberServer(s.Name, s.BaseURL())
		fmt.Printf("  %-20s %s\n", s.Name, s.BaseURL())
		if s.Version != "" {
			fmt.Printf("  %-20s version %s\n", "", s.Version)
		}
	}

	if scanDefault != "" {
		if err := registry.SetDefault(scanDefault); err != nil {
			return err
		}
	} else if registry.Default == "" && len(servers) == 1 {
		_ = registry.SetDefault(servers[0].Name)
	}

	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if registry.Default != "" {
		fmt.Printf("\nDefault server: %s\n", registry.Default)
	}
	return nil
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a deck",
	Long: `Fetch the deck configuration and print one deck as a slot list.

With --check the whole configuration is validated instead and every
problem is listed. The command fails when problems are found.`,
	Example: `  # Print the start deck
  harpia-deck show

  # Print another deck
  harpia-deck show --deck sons

  # Validate every deck
  harpia-deck show --check`,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	cfg, err := client.DeckConfig(cmd.Context())
	if err != nil {
		return explain(err)
	}

	if showJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	if showCheck {
		issues := cfg.Validate()
		if len(issues) == 0 {
			fmt.Printf("Configuration OK (%d decks)\n", len(cfg.Decks))
			return nil
		}
		for _, issue := range issues {
			fmt.Printf("  %s\n", issue)
		}
		return fmt.Errorf("%d problem(s) found", len(issues))
	}

	id := pickDeck(cfg, showDeck)
	if !cfg.HasDeck(id) {
		return fmt.Errorf("deck %q not found (have: %s)", id, strings.Join(cfg.DeckIDs(), ", "))
	}

	views := render.Render(cfg, id, nil, store.ModeNormal)
	fmt.Print(formatDeck(id, views, term.IsTerminal(int(os.Stdout.Fd()))))
	return nil
}

// pickDeck returns the requested deck, or the start deck.
func pickDeck(cfg *deck.Configuration, requested string) deck.DeckID {
	if requested != "" {
		return requested
	}
	if cfg.Settings.StartDeck != "" && cfg.HasDeck(cfg.Settings.StartDeck) {
		return cfg.Settings.StartDeck
	}
	return deck.RootDeck
}

// formatDeck lists the configured slots of a deck. On a terminal the grid
// glyphs are included.
func formatDeck(id deck.DeckID, views []render.SlotView, tty bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deck %s\n", id)
	configured := 0
	for _, v := range views {
		if v.Empty {
			continue
		}
		configured++
		category := string(v.Category)
		if category == "" {
			category = "-"
		}
		if tty {
			fmt.Fprintf(&b, "  %s %-8s %-24s %s\n", tui.IconGlyph(v.Icon), v.Slot, tui.Truncate(v.Label, 24), category)
		} else {
			fmt.Fprintf(&b, "  %-8s %-24s %s\n", v.Slot, v.Label, category)
		}
	}
	if configured == 0 {
		b.WriteString("  (empty)\n")
	}
	fmt.Fprintf(&b, "%d of %d slots configured\n", configured, deck.GridSize)
	return b.String()
}

var pressCmd = &cobra.Command{
	Use:   "press <slot>",
	Short: "Press a button",
	Long: `Run a button as if it was clicked on the dashboard.

The dashboard socket is opened for the duration of the press. The slot is
given as slot-N or just N (0-15). Stateful buttons always run their ON
actions, since toggle state is not kept between runs.`,
	Example: `  # Press slot 3 of the start deck
  harpia-deck press 3

  # Press a button on another deck
  harpia-deck press slot-0 --deck sons`,
	Args: cobra.ExactArgs(1),
	RunE: runPress,
}

func runPress(cmd *cobra.Command, args []string) error {
	slot, err := parseSlot(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	p, err := openPanel(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	id := pickDeck(p.Store().Config(), pressDeck)
	if pressDeck != "" {
		if !p.Store().Config().HasDeck(id) {
			return fmt.Errorf("deck %q not found", id)
		}
		p.Store().Navigate(id)
	}

	if _, ok := p.Store().Button(slot); !ok {
		return fmt.Errorf("%s on deck %s is empty", slot, p.Store().CurrentDeck())
	}

	res := p.Press(slot)
	if len(res.Intents) == 0 {
		fmt.Printf("%s: nothing to run\n", slot)
		return nil
	}
	for _, intent := range res.Intents {
		fmt.Println(describeIntent(intent))
	}
	return nil
}

// openPanel loads the configuration and attaches the dashboard socket.
func openPanel(ctx context.Context) (*panel.Panel, error) {
	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}
	p := panel.New(client, panel.Options{})
	if err := p.Load(ctx); err != nil {
		return nil, explain(err)
	}

	wsURL, err := transport.DashboardURL(client.BaseURL)
	if err != nil {
		return nil, err
	}
	if _, err := p.Connect(ctx, wsURL, transport.SessionHeader(config.Session())); err != nil {
		return nil, explain(err)
	}
	return p, nil
}

// parseSlot accepts "slot-N" or "N".
func parseSlot(arg string) (deck.SlotID, error) {
	slot := arg
	if !strings.HasPrefix(slot, "slot-") {
		slot = "slot-" + slot
	}
	if _, ok := deck.SlotIndex(slot); !ok {
		return "", fmt.Errorf("invalid slot %q (expected slot-0 to slot-%d)", arg, deck.GridSize-1)
	}
	return slot, nil
}

// describeIntent renders one dispatched intent for the console.
func describeIntent(i protocol.Intent) string {
	if i.Local() {
		if nav, ok := i.Data.(protocol.NavigateRequest); ok {
			return fmt.Sprintf("  -> open deck %s", nav.DeckID)
		}
	}
	data, err := json.Marshal(i.Data)
	if err != nil {
		return fmt.Sprintf("  -> %s", i.Event)
	}
	return fmt.Sprintf("  -> %s %s", i.Event, data)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <slot>",
	Short: "Delete a button",
	Long: `Remove a button from a deck.

Asks for confirmation on a terminal unless --yes is given or
confirm_delete is off in the settings file.`,
	Example: `  # Delete slot 5 of the start deck
  harpia-deck delete 5

  # Delete without asking
  harpia-deck delete slot-5 --deck sons --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	slot, err := parseSlot(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	cfg, err := client.DeckConfig(ctx)
	if err != nil {
		return explain(err)
	}
	id := pickDeck(cfg, deleteDeck)
	button, ok := cfg.Deck(id)[slot]
	if !ok {
		return fmt.Errorf("%s on deck %s is empty", slot, id)
	}

	if !deleteYes && registry.Preferences.ConfirmDelete && term.IsTerminal(int(os.Stdin.Fd())) {
		confirmed := false
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q (%s on deck %s)?", button.Label, slot, id)).
				Description("The button is removed from the server.").
				Value(&confirmed),
		)).Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := client.DeleteButton(ctx, id, slot); err != nil {
		return explain(err)
	}
	fmt.Printf("Deleted %s from deck %s\n", slot, id)
	return nil
}
