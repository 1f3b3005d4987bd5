package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/playlister/internal/shared"
	"github.com/desertthunder/playlister/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive playlist player.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if err := r.bootstrap(cmd); err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.ModelOpts{
		Sessions:    r.gateway,
		Catalog:     r.newCatalog(ctx),
		PlaylistIDs: playlistIDs(cmd),
		Authorize:   r.authorizeInTUI,
		NewPlayer:   func() ui.Controller { return r.newController() },
		Logger:      fileLogger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// authorizeInTUI runs the local callback flow with console output silenced.
func (r *Runner) authorizeInTUI(ctx context.Context) error {
	if !r.config.IsDevelopment() {
		return fmt.Errorf("%w: run 'playlister auth login' to sign in outside development", shared.ErrNotImplemented)
	}

	out := r.output
	r.output = io.Discard
	defer func() { r.output = out }()

	return r.authorize(ctx)
}
