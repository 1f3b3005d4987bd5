// Package ui implements the interactive terminal interface using bubbletea's Elm architecture.
//
// The [Model] shows exactly one screen at a time. Screens are a closed set of
// types, each carrying only what it renders:
//  1. loading : "Loading..." while the session is checked and the catalog fetched
//  2. error : a full-screen catalog or authentication failure with a retry key
//  3. login : shown when no session exists
//  4. catalog : the curated playlists; enter selects, p starts playing
//  5. player : the playback device panel with transport controls
//
// [Selection] tracks the single selected playlist. Player snapshots flow in
// through a channel that is re-armed after every message, so the view always
// renders the newest device state.
//
// Keyboard navigation uses vim-style bindings with contextual help from charmbracelet/bubbles/help.
package ui
