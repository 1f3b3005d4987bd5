package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/playlister/internal/player"
	"github.com/desertthunder/playlister/internal/shared"
	"github.com/urfave/cli/v3"
)

// Play starts one playlist on the playback device and prints state changes
// until interrupted, the device goes offline or the player fails.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	if err := r.bootstrap(cmd); err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	playlists, err := r.newCatalog(ctx).Load(ctx, []string{cmd.String("id")})
	if err != nil {
		return err
	}
	p := playlists[0]

	ctrl := r.newController()
	defer ctrl.Close()

	ctrl.Start(ctx)
	ctrl.Play(p.URI)

	r.writePlain("→ Starting %s on %q\n", p.Name, r.config.Player.DeviceName)
	r.writePlain("→ Select the device in any Spotify client if it does not appear. Ctrl+C to stop.\n")

	return r.follow(ctrl.Updates())
}

// follow prints each distinct snapshot until the player stops or reaches a
// terminal state.
func (r *Runner) follow(updates <-chan player.Snapshot) error {
	var last string
	for snap := range updates {
		if line := describeSnapshot(snap); line != last {
			last = line
			r.writePlain("%s\n", line)
		}
		switch snap.State {
		case player.Errored:
			return snap.Err
		case player.Offline:
			return shared.NewAppError(shared.KindDevice, shared.MsgDeviceOffline, nil)
		}
	}
	return nil
}

func describeSnapshot(s player.Snapshot) string {
	switch s.State {
	case player.Ready:
		t := s.Playback.Track
		if t == nil {
			return fmt.Sprintf("ready on device %s", s.DeviceID)
		}
		icon := "⏸"
		if s.Playing() {
			icon = "▶"
		}
		return fmt.Sprintf("%s %s - %s", icon, t.Name, t.ArtistLine())
	case player.Offline:
		return "device went offline"
	case player.Errored:
		return "error: " + s.ErrorMessage()
	default:
		return s.State.String() + "..."
	}
}
