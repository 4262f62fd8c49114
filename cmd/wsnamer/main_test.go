package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-version"}, env(nil), &stdout, &stderr)

	assert.Equal(t, exitOK, code)
	assert.Equal(t, "wsnamer dev\n", stdout.String())
}

func TestRunStartupFailures(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "no window manager", args: []string{"-no-watch"}},
		{name: "unknown backend", args: []string{"-backend", "i3"}, env: map[string]string{"SWAYSOCK": "/run/sway.sock"}},
		{name: "bad log level", args: []string{"-log-level", "chatty"}, env: map[string]string{"SWAYSOCK": "/run/sway.sock"}},
		{name: "unknown flag", args: []string{"-frobnicate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, env(tt.env), &stdout, &stderr)
			assert.Equal(t, exitStartup, code)
		})
	}
}

func TestRunExitsWhenReconnectsAreExhausted(t *testing.T) {
	t.Setenv("WSNAMER_RECONNECT_MIN", "1ms")
	t.Setenv("WSNAMER_RECONNECT_MAX", "1ms")
	t.Setenv("WSNAMER_RECONNECT_ATTEMPTS", "1")

	socket := filepath.Join(t.TempDir(), "missing.sock")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-backend", "sway", "-no-watch", "-log-level", "error"},
		env(map[string]string{"SWAYSOCK": socket}), &stdout, &stderr)

	assert.Equal(t, exitReconnect, code)
	assert.Contains(t, stderr.String(), `"message":"Shutting down"`)
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Setenv("WSNAMER_RECONNECT_MIN", "1h")
	t.Setenv("WSNAMER_RECONNECT_MAX", "1h")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	socket := filepath.Join(t.TempDir(), "missing.sock")
	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"-no-watch", "-log-level", "error"},
		env(map[string]string{"SWAYSOCK": socket}), &stdout, &stderr)

	assert.Equal(t, exitOK, code)
}
