package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"watchlater/internal/shared"
	"watchlater/internal/ui"
)

// TUI launches the interactive watchlist browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/watchlater-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)
	r.movies.SetLogger(fileLogger)
	r.watchlist.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.movies, r.watchlist, int64(cmd.Int("user")))
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
