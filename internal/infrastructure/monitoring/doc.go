/*
Package monitoring provides Prometheus metrics for the renaming daemon.

# Overview

Metrics live on a private registry so tests can create as many collectors
as they like. Every recording method accepts a nil receiver.

# Metrics

- wsnamer_events_total{backend,type}
- wsnamer_protocol_errors_total{backend}
- wsnamer_renames_total{backend,status}
- wsnamer_rename_duration_seconds{backend}
- wsnamer_connected{backend}
- wsnamer_reconnects_total{backend}
- wsnamer_workspaces, wsnamer_windows
- wsnamer_config_reloads_total{status}

# Usage

	metrics := monitoring.NewMetrics()
	metrics.RecordEvent("sway", "window_opened")

	// Optional endpoint
	go monitoring.Serve(ctx, "127.0.0.1:9137", metrics, logger)
*/
package monitoring
