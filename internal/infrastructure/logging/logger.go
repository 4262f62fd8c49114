package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects how the daemon logs.
type Config struct {
	// Level is a zap level name. Empty means info, or debug in development.
	Level string
	// Development switches from JSON lines to colored console output and
	// adds callers.
	Development bool
	// Output receives the log lines. Nil means stderr, which the compositor
	// usually captures for the processes it starts.
	Output io.Writer
	// Fields are attached to every entry, e.g. the daemon version.
	Fields []zap.Field
}

// New builds the root logger. Components derive named children from it.
func New(cfg Config) (*zap.Logger, error) {
	level := cfg.Level
	if level == "" && cfg.Development {
		level = "debug"
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	sink := zapcore.Lock(zapcore.AddSync(out))

	var enc zapcore.Encoder
	opts := []zap.Option{zap.ErrorOutput(sink), zap.Fields(cfg.Fields...)}
	if cfg.Development {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
		opts = append(opts, zap.Development(), zap.AddCaller(), zap.AddStacktrace(zapcore.WarnLevel))
	} else {
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "timestamp"
		ec.MessageKey = "message"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
	}

	return zap.New(zapcore.NewCore(enc, sink, lvl), opts...), nil
}

// ParseLevel converts a level name to zapcore.Level. An empty name is info.
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}
