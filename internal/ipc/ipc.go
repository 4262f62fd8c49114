package ipc

import (
	"context"
	"fmt"
)

// WorkspaceID identifies a workspace for the lifetime of the window manager
// session. Sway uses the workspace number, Hyprland the numeric workspace id.
type WorkspaceID string

// WindowID is the backend's opaque window handle (Sway container id,
// Hyprland client address).
type WindowID string

// EventType enumerates the normalized events.
type EventType int

const (
	WindowOpened EventType = iota + 1
	WindowClosed
	WindowMoved
	WorkspaceFocusChanged
	WindowRenamed
	// WorkspaceReset reports that the window manager created or destroyed
	// a workspace, dropping any name set on it earlier.
	WorkspaceReset
)

// String returns the event name used in logs and metric labels
func (t EventType) String() string {
	switch t {
	case WindowOpened:
		return "window_opened"
	case WindowClosed:
		return "window_closed"
	case WindowMoved:
		return "window_moved"
	case WorkspaceFocusChanged:
		return "workspace_focus"
	case WindowRenamed:
		return "window_renamed"
	case WorkspaceReset:
		return "workspace_reset"
	default:
		return "unknown"
	}
}

// Event is a backend-agnostic representation of one IPC message.
//
// Fields are populated per type:
//   - WindowOpened: Window, AppID, To
//   - WindowClosed: Window
//   - WindowMoved: Window, AppID (may be empty), From (may be empty), To
//   - WorkspaceFocusChanged: To
//   - WindowRenamed: Window, AppID
//   - WorkspaceReset: To
type Event struct {
	Type   EventType
	Window WindowID
	AppID  string
	From   WorkspaceID
	To     WorkspaceID
}

func (e Event) String() string {
	return fmt.Sprintf("%s(window=%s app=%q from=%s to=%s)", e.Type, e.Window, e.AppID, e.From, e.To)
}

// WindowSnapshot is one window as reported by a state query.
type WindowSnapshot struct {
	ID    WindowID
	AppID string
}

// WorkspaceSnapshot is one workspace and its windows in display order.
type WorkspaceSnapshot struct {
	ID         WorkspaceID
	NativeName string
	Windows    []WindowSnapshot
}

// Backend is the behavioral contract shared by every window manager variant.
type Backend interface {
	// Name returns the backend name for logging/metrics
	Name() string
	// Connect opens the control and event channels. Failures are ConnectionErrors.
	Connect(ctx context.Context) error
	// Snapshot queries the full workspace/window state.
	Snapshot(ctx context.Context) ([]WorkspaceSnapshot, error)
	// Subscribe starts streaming normalized events. The event channel is
	// closed when the connection drops; the cause (if any) is sent on the
	// error channel first. Subscribe may only be called once per Connect.
	Subscribe(ctx context.Context) (<-chan Event, <-chan error)
	// RenameWorkspace sets the display name. Failures are CommandErrors.
	RenameWorkspace(ctx context.Context, ws WorkspaceID, name string) error
	// Close releases every socket.
	Close() error
}
