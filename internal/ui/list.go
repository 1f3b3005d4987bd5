package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/playlister/internal/models"
	"github.com/desertthunder/playlister/internal/shared"
)

const descriptionLimit = 30

var _ list.Item = playlistItem{}

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
	selected bool
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }

func (i playlistItem) Title() string {
	if i.selected {
		return "● " + i.playlist.Name
	}
	return "  " + i.playlist.Name
}

func (i playlistItem) Description() string {
	return "  Playlist • " + shared.Truncate(i.playlist.Description, descriptionLimit)
}

func playlistItems(playlists []models.Playlist, sel *Selection) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, p := range playlists {
		items[i] = playlistItem{playlist: p, selected: sel.IsSelected(p.ID)}
	}
	return items
}
