package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/harpiadesk/harpia/internal/api"
	"github.com/harpiadesk/harpia/internal/live"
)

var (
	channelTitle string
	channelGame  string
	channelEdit  bool
)

func init() {
	channelCmd.Flags().StringVar(&channelTitle, "title", "", "New stream title")
	channelCmd.Flags().StringVar(&channelGame, "game", "", "Category search; the first match is used")
	channelCmd.Flags().BoolVarP(&channelEdit, "edit", "e", false, "Edit title and category interactively")

	rootCmd.AddCommand(channelCmd)
}

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Show or update the channel title and category",
	Long: `Show the channel's title, category and live stream state.

With --title or --game the channel is updated. With --edit a form asks for
the new title and searches categories as you go.`,
	Example: `  # Show the channel
  harpia-deck channel

  # Set the title and pick the first category matching "just chat"
  harpia-deck channel --title "Late night chat" --game "just chat"

  # Edit interactively
  harpia-deck channel --edit`,
	RunE: runChannel,
}

func runChannel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	info, err := client.ChannelInfo(ctx)
	if err != nil {
		return explain(err)
	}

	search := live.NewGameSearch(client)
	search.SetCurrent(info.CategoryID, info.Category)

	switch {
	case channelEdit:
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("--edit needs a terminal")
		}
		update, ok, err := editChannel(ctx, search, info)
		if err != nil || !ok {
			return err
		}
		return applyChannel(ctx, client, update)

	case channelTitle != "" || channelGame != "":
		title := channelTitle
		if title == "" {
			title = info.Title
		}
		if channelGame != "" {
			games, err := search.Search(ctx, channelGame)
			if err != nil {
				return explain(err)
			}
			if len(games) == 0 {
				return fmt.Errorf("no category matches %q (queries need %d characters)", channelGame, live.MinQueryLength)
			}
			search.Select(0)
		}
		return applyChannel(ctx, client, search.Update(title))
	}

	stats, statsErr := client.StreamStats(ctx)
	fmt.Print(formatChannel(info, stats, statsErr))
	return nil
}

func applyChannel(ctx context.Context, client *api.Client, update api.ChannelUpdate) error {
	if err := client.UpdateChannel(ctx, update); err != nil {
		return explain(err)
	}
	fmt.Printf("Channel updated: %q\n", update.Title)
	return nil
}

// editChannel asks for a title and a category query, then offers the
// matching categories. ok is false when the user backs out.
func editChannel(ctx context.Context, search *live.GameSearch, info *api.ChannelInfo) (api.ChannelUpdate, bool, error) {
	title := info.Title
	query := ""
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Title").
			Value(&title),
		huh.NewInput().
			Title("Category").
			Description(fmt.Sprintf("Current: %s. Leave empty to keep it.", orDash(info.Category))).
			Value(&query),
	)).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return api.ChannelUpdate{}, false, nil
		}
		return api.ChannelUpdate{}, false, err
	}

	if query != "" {
		games, err := search.Search(ctx, query)
		if err != nil {
			return api.ChannelUpdate{}, false, explain(err)
		}
		if len(games) == 0 {
			fmt.Printf("No category matches %q, keeping %s\n", query, orDash(info.Category))
		} else {
			options := make([]huh.Option[int], 0, len(games))
			for i, g := range games {
				options = append(options, huh.NewOption(g.Name, i))
			}
			choice := 0
			err := huh.NewForm(huh.NewGroup(
				huh.NewSelect[int]().
					Title("Pick a category").
					Options(options...).
					Value(&choice),
			)).Run()
			if err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return api.ChannelUpdate{}, false, nil
				}
				return api.ChannelUpdate{}, false, err
			}
			search.Select(choice)
		}
	}
	return search.Update(title), true, nil
}

// formatChannel prints channel metadata and the stream state. A failed
// stats fetch is shown inline rather than failing the command.
func formatChannel(info *api.ChannelInfo, stats *api.StreamStats, statsErr error) string {
	out := fmt.Sprintf("Title:    %s\nCategory: %s\n", orDash(info.Title), orDash(info.Category))
	switch {
	case statsErr != nil:
		out += fmt.Sprintf("Stream:   unavailable (%s)\n", api.GetShortErrorMessage(statsErr))
	case stats == nil || !stats.Online():
		out += "Stream:   offline\n"
	default:
		out += fmt.Sprintf("Stream:   live, %s viewers\n", humanize.Comma(int64(stats.ViewerCount)))
		if !stats.StartedAt.IsZero() {
			out += fmt.Sprintf("Started:  %s\n", humanize.Time(stats.StartedAt))
		}
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
