// Package ipc defines the contract between the renaming core and a window
// manager's IPC protocol.
//
// Backends translate their wire messages into normalized events:
//   - WindowOpened: a window appeared on a workspace
//   - WindowClosed: a window went away
//   - WindowMoved: a window changed workspace
//   - WorkspaceFocusChanged: focus moved, membership unchanged
//   - WindowRenamed: a window's application identifier changed
//
// Two variants exist, sway (i3-ipc framing with JSON payloads) and hyprland
// (line-delimited event socket plus a command socket). All wire-format
// knowledge stays inside those packages.
//
// Example Usage:
//
//	kind, err := ipc.DetectKind(ipc.KindAuto, os.Getenv)
//	backend := sway.New("", logger) // or hyprland.New
//	if err := backend.Connect(ctx); err != nil { ... }
//	snapshot, err := backend.Snapshot(ctx)
//	events, errs := backend.Subscribe(ctx)
package ipc
