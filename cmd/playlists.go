package main

import (
	"context"

	"github.com/desertthunder/playlister/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Playlists loads the catalog and renders it.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	if err := r.bootstrap(cmd); err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	ids := playlistIDs(cmd)
	r.logger.Infof("loading %v playlists", len(ids))

	playlists, err := r.newCatalog(ctx).Load(ctx, ids)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	format := cmd.String("format")
	if out := cmd.String("output"); out != "" {
		if err := formatter.WriteExport(playlists, format, out); err != nil {
			return err
		}
		return r.writePlain("✓ %d playlists written to %s\n", len(playlists), out)
	}

	data, err := formatter.Render(format, playlists)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}
