// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/playlister/internal/formatter"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func playlistIDsFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "id",
		Usage: "Playlist ID to load (repeatable, defaults to the curated catalog)",
	}
}

// setupCommand handles first-run setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "storage",
				Usage:  "Create the local storage database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupStorage,
			},
		},
	}
}

// authCommand manages the Spotify session.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify session",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify (PKCE) and cache the session",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Remove every cached session key",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the cached session and the Spotify profile",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "Skip the profile lookup",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// playlistsCommand lists the curated catalog.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"ls"},
		Usage:   "List the curated playlists",
		Flags: []cli.Flag{
			configFlag(),
			playlistIDsFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, markdown, csv or json",
				Value:   formatter.FormatText,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the rendered catalog to a file",
			},
		},
		Action: r.Playlists,
	}
}

// playCommand runs the player without the TUI.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Start a playlist on the playback device and print now-playing updates",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Playlist ID to play",
				Required: true,
			},
		},
		Action: r.Play,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive playlist player",
		Flags:   []cli.Flag{configFlag(), playlistIDsFlag()},
		Action:  r.TUI,
	}
}
