// Package storage is the local key/value store that holds cached session
// artifacts, the terminal counterpart of a browser's local storage.
//
// Values live in a single SQLite table managed by embedded, versioned
// migrations. Keys whose name contains "spotify" or "token" are session keys:
// [ClearSessionKeys] removes exactly those and nothing else, and is called by
// both the login and logout flows.
package storage
