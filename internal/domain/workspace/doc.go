// Package workspace tracks which windows live on which workspace.
//
// The Tracker is a plain state machine fed one normalized event at a time:
//
//	tracker := workspace.NewTracker()
//	tracker.Reset(snapshot)
//	affected := tracker.Apply(event)
//
// Invariants:
//   - a window is a member of exactly one workspace
//   - members keep arrival order
//   - workspaces are created on first reference and never removed
//
// Duplicate closes and moves of unknown windows are expected from real
// backends and handled without error.
package workspace
