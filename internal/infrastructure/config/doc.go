// Package config provides the daemon's configuration.
//
// Process settings come from environment variables with sensible defaults;
// CLI flags override them. The symbol table is a separate YAML, TOML or
// JSON (comments allowed) file that is discovered on startup and reloaded
// when it changes on disk.
//
// Example Usage:
//
//	cfg, err := config.Load()
//	path, _ := config.Discover(cfg.SymbolsPath, os.Getenv)
//	syms, err := config.LoadSymbols(path, logger)
//	reloads, err := config.Watch(ctx, path, logger)
//
// Environment Variables:
//   - WSNAMER_BACKEND, WSNAMER_CONFIG, WSNAMER_WATCH
//   - WSNAMER_LOG_LEVEL, WSNAMER_LOG_DEV
//   - WSNAMER_RECONNECT_MIN, WSNAMER_RECONNECT_MAX, WSNAMER_RECONNECT_ATTEMPTS
//   - WSNAMER_RENAME_RATE, WSNAMER_RENAME_BURST
//   - WSNAMER_METRICS_ADDR
package config
