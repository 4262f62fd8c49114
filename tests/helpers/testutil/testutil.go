// Package testutil provides testing utilities and helpers for wsnamer tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/wsnamer/internal/ipc"
)

// MockBackend is a mock implementation of ipc.Backend for testing.
type MockBackend struct {
	mock.Mock
}

// Name mocks the Name method.
func (m *MockBackend) Name() string {
	args := m.Called()
	return args.String(0)
}

// Connect mocks the Connect method.
func (m *MockBackend) Connect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Snapshot mocks the Snapshot method.
func (m *MockBackend) Snapshot(ctx context.Context) ([]ipc.WorkspaceSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ipc.WorkspaceSnapshot), args.Error(1)
}

// Subscribe mocks the Subscribe method.
func (m *MockBackend) Subscribe(ctx context.Context) (<-chan ipc.Event, <-chan error) {
	args := m.Called(ctx)
	return args.Get(0).(<-chan ipc.Event), args.Get(1).(<-chan error)
}

// RenameWorkspace mocks the RenameWorkspace method.
func (m *MockBackend) RenameWorkspace(ctx context.Context, ws ipc.WorkspaceID, name string) error {
	args := m.Called(ctx, ws, name)
	return args.Error(0)
}

// Close mocks the Close method.
func (m *MockBackend) Close() error {
	args := m.Called()
	return args.Error(0)
}

// NewMockBackend creates a new mock backend with default behaviors.
func NewMockBackend(t *testing.T, name string) *MockBackend {
	t.Helper()
	m := new(MockBackend)

	m.On("Name").Return(name).Maybe()
	m.On("Close").Return(nil).Maybe()

	return m
}

// Stream is a scripted event subscription.
type Stream struct {
	Events chan ipc.Event
	Errs   chan error
}

// NewStream creates a buffered stream for scripted tests.
func NewStream() *Stream {
	return &Stream{
		Events: make(chan ipc.Event, 16),
		Errs:   make(chan error, 1),
	}
}

// Returns adapts the stream to Subscribe's return values.
func (s *Stream) Returns() (<-chan ipc.Event, <-chan error) {
	return s.Events, s.Errs
}

// Drop ends the stream the way a lost connection does.
func (s *Stream) Drop(err error) {
	if err != nil {
		s.Errs <- err
	}
	close(s.Events)
}

// Snapshot builds a workspace snapshot from (window id, app id) pairs.
func Snapshot(ws string, windows ...string) ipc.WorkspaceSnapshot {
	snap := ipc.WorkspaceSnapshot{ID: ipc.WorkspaceID(ws), NativeName: ws}
	for i := 0; i+1 < len(windows); i += 2 {
		snap.Windows = append(snap.Windows, ipc.WindowSnapshot{
			ID:    ipc.WindowID(windows[i]),
			AppID: windows[i+1],
		})
	}
	return snap
}
