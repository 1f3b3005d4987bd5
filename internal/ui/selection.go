package ui

import "github.com/desertthunder/playlister/internal/models"

// Selection holds at most one playlist.
type Selection struct {
	current *models.Playlist
}

// Select makes p the selection. Selecting the current playlist again changes
// nothing; it is not a toggle. It reports whether the selection changed.
func (s *Selection) Select(p models.Playlist) bool {
	if s.current != nil && s.current.ID == p.ID {
		return false
	}
	s.current = &p
	return true
}

// Selected returns the current selection.
func (s *Selection) Selected() (models.Playlist, bool) {
	if s.current == nil {
		return models.Playlist{}, false
	}
	return *s.current, true
}

// IsSelected reports whether the playlist with id is selected.
func (s *Selection) IsSelected(id string) bool {
	return s.current != nil && s.current.ID == id
}

// Play promotes the selection to a play request. It is false when nothing
// playable is selected.
func (s *Selection) Play() (models.Playlist, bool) {
	p, ok := s.Selected()
	if !ok || !p.Playable() {
		return models.Playlist{}, false
	}
	return p, true
}

// Clear drops the selection.
func (s *Selection) Clear() {
	s.current = nil
}
