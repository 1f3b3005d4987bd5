package ui

import (
	"github.com/desertthunder/playlister/internal/models"
	"github.com/desertthunder/playlister/internal/player"
)

type sessionCheckedMsg struct {
	err error
}

type authorizedMsg struct {
	err error
}

type catalogLoadedMsg struct {
	playlists []models.Playlist
	err       error
}

// snapshotMsg carries the controller it came from so stale players are ignored.
type snapshotMsg struct {
	source Controller
	snap   player.Snapshot
}

type playerStoppedMsg struct {
	source Controller
}

type transportDoneMsg struct {
	err error
}

type loggedOutMsg struct {
	err error
}
