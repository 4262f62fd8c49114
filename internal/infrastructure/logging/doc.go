// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON lines on stderr, info level
//   - Development: colored console output at debug level
//
// Components receive a named *zap.Logger ("daemon", "sway", "renamer")
// and attach structured fields rather than formatting messages.
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "debug", Output: os.Stderr})
//	logger.Info("Connected", zap.String("backend", "sway"))
//	logger.Warn("Rename failed", zap.Error(err))
package logging
