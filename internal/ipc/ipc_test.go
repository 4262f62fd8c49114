package ipc

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorsMatchSentinels(t *testing.T) {
	cause := errors.New("broken pipe")

	tests := []struct {
		name     string
		err      error
		sentinel error
		others   []error
	}{
		{name: "connection", err: &ConnectionError{Backend: "sway", Op: "dial", Err: cause}, sentinel: ErrConnection, others: []error{ErrProtocol, ErrCommand}},
		{name: "protocol", err: &ProtocolError{Backend: "sway", Payload: "{", Err: cause}, sentinel: ErrProtocol, others: []error{ErrConnection, ErrCommand}},
		{name: "command", err: &CommandError{Backend: "sway", Command: "rename", Err: cause}, sentinel: ErrCommand, others: []error{ErrConnection, ErrProtocol}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("session: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.ErrorIs(t, wrapped, cause)
			for _, other := range tt.others {
				assert.NotErrorIs(t, wrapped, other)
			}
			assert.Contains(t, wrapped.Error(), "broken pipe")
		})
	}

	var cmdErr *CommandError
	require.ErrorAs(t, fmt.Errorf("x: %w", &CommandError{Command: "rename"}), &cmdErr)
	assert.Equal(t, "rename", cmdErr.Command)
}

func TestProtocolErrorTruncatesPayload(t *testing.T) {
	err := &ProtocolError{Backend: "hyprland", Payload: strings.Repeat("x", 500), Err: errors.New("bad")}
	assert.Less(t, len(err.Error()), 200)
	assert.Contains(t, err.Error(), "...")
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{input: "", want: KindAuto},
		{input: "auto", want: KindAuto},
		{input: " Sway ", want: KindSway},
		{input: "HYPRLAND", want: KindHyprland},
		{input: "i3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectKind(t *testing.T) {
	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	got, err := DetectKind(KindAuto, env(map[string]string{"SWAYSOCK": "/run/user/1000/sway-ipc.sock"}))
	require.NoError(t, err)
	assert.Equal(t, KindSway, got)

	got, err = DetectKind(KindAuto, env(map[string]string{"SWAYSOCK": "/stale", "HYPRLAND_INSTANCE_SIGNATURE": "abc"}))
	require.NoError(t, err)
	assert.Equal(t, KindHyprland, got)

	got, err = DetectKind(KindSway, env(nil))
	require.NoError(t, err)
	assert.Equal(t, KindSway, got, "explicit kind is not checked against the environment")

	_, err = DetectKind(KindAuto, env(nil))
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "window_opened", WindowOpened.String())
	assert.Equal(t, "workspace_focus", WorkspaceFocusChanged.String())
	assert.Equal(t, "workspace_reset", WorkspaceReset.String())
	assert.Equal(t, "unknown", EventType(99).String())
}
