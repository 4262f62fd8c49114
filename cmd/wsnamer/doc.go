// Package main is the entry point for wsnamer.
//
// wsnamer renames Sway and Hyprland workspaces after the applications open
// on them, using a symbol table that maps application identifiers to short
// glyphs.
//
// Configuration:
//   - Environment variables (WSNAMER_*)
//   - CLI flags (override env vars)
//   - Symbol file: -config, ./config.*, $XDG_CONFIG_HOME/wsnamer/config.*,
//     /etc/wsnamer/config.* (yaml, yml, toml or json)
//
// Usage:
//
//	# Auto-detect the window manager
//	wsnamer
//
//	# Explicit backend and symbol file, colored debug logs
//	wsnamer -backend sway -config ~/.config/wsnamer/config.yaml -dev -log-level debug
//
//	# Expose Prometheus metrics
//	wsnamer -metrics 127.0.0.1:9100
//
// Exit codes:
//   - 0: stopped by SIGINT or SIGTERM
//   - 1: startup failure (no backend, bad flags or settings)
//   - 2: reconnect attempts exhausted
package main
