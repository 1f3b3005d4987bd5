// package models defines the data model for the playlist player
package models

import "strings"

// Image is a cover image. Width and Height are zero when the service omits them.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Playlist represents playlist metadata resolved from the catalog.
type Playlist struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Images      []Image `json:"images"`
	URI         string  `json:"uri"` // playable context reference, e.g. spotify:playlist:<id>
	TrackCount  int     `json:"track_count"`
}

// Cover returns the first image URL or an empty string.
func (p Playlist) Cover() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// Playable reports whether the playlist carries a context URI.
func (p Playlist) Playable() bool {
	return p.URI != ""
}

// Track represents the track reported by the playback device.
type Track struct {
	ID          string   `json:"id"`
	URI         string   `json:"uri"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	AlbumImages []Image  `json:"album_images"`
}

// ArtistLine joins artist names with a comma.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// Art returns the first album image URL or an empty string.
func (t Track) Art() string {
	if len(t.AlbumImages) == 0 {
		return ""
	}
	return t.AlbumImages[0].URL
}

// PlaybackState is the transport state of a playback device.
// Track is nil when nothing is loaded.
type PlaybackState struct {
	Paused     bool   `json:"paused"`
	Track      *Track `json:"track,omitempty"`
	PositionMs int    `json:"position_ms"`
	DurationMs int    `json:"duration_ms"`
}
