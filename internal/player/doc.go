// Package player is the playback device controller.
//
// A [Controller] boots a device through an [SDK], feeds it a token callback
// that resolves a fresh token on every call, and exposes transport controls
// plus a live [Snapshot] of the device state.
//
// # State machine
//
//	Uninitialized → ScriptLoading → SDKReady → TokenPending → DeviceConnecting → Ready → Offline
//	                      └──────────────── any failure ───────────────────────────┴→ Errored
//
// Errored and Offline are terminal. There is no automatic reconnection; the
// caller tears the controller down with [Controller.Close] and builds a new one.
//
// # Events
//
// Devices report through a callback that only enqueues. A single goroutine
// drains the queue and applies each event in arrival order, so state is never
// touched concurrently. Snapshots are published on [Controller.Updates] with
// last-write-wins delivery: a slow reader sees the newest snapshot, not a backlog.
//
// # Remote playback
//
// Once a device is Ready and a target context has been requested with
// [Controller.Play], the controller asks its [Starter] to begin playback.
// It fires exactly once per fresh (device, target) pair.
//
// [ConnectSDK] is the concrete backend: it drives a Spotify Connect device
// through the Web API.
package player
