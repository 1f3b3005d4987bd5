// Package models defines the entities shared by the catalog, player and UI packages.
//
//   - [Playlist] : a curated playlist resolved from the catalog, immutable once fetched
//   - [Image] : a cover or album image
//   - [Track] : the currently playing track descriptor
//   - [PlaybackState] : transport state reported by the playback device
//
// None of these types are persisted; they live for the duration of a session.
package models
