package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/wsnamer/internal/daemon"
	"github.com/GriffinCanCode/wsnamer/internal/domain/renamer"
	"github.com/GriffinCanCode/wsnamer/internal/infrastructure/config"
	"github.com/GriffinCanCode/wsnamer/internal/infrastructure/logging"
	"github.com/GriffinCanCode/wsnamer/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/wsnamer/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/wsnamer/internal/ipc"
	"github.com/GriffinCanCode/wsnamer/internal/ipc/hyprland"
	"github.com/GriffinCanCode/wsnamer/internal/ipc/sway"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	exitOK        = 0
	exitStartup   = 1
	exitReconnect = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "wsnamer: %v\n", err)
		return exitStartup
	}

	// Parse flags; environment values are the defaults
	fs := flag.NewFlagSet("wsnamer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.SymbolsPath, "config", cfg.SymbolsPath, "Symbol file (yaml, toml or json)")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "Window manager: auto, sway or hyprland")
	fs.BoolVar(&cfg.LogDev, "dev", cfg.LogDev, "Development mode (colored console logs)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Serve Prometheus metrics on this address")
	noWatch := fs.Bool("no-watch", !cfg.Watch, "Do not reload the symbol file when it changes")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitStartup
	}
	if *showVersion {
		fmt.Fprintf(stdout, "wsnamer %s\n", version)
		return exitOK
	}
	cfg.Watch = !*noWatch

	logger, err := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Development: cfg.LogDev,
		Output:      stderr,
		Fields:      []zap.Field{zap.String("version", version)},
	})
	if err != nil {
		fmt.Fprintf(stderr, "wsnamer: %v\n", err)
		return exitStartup
	}
	defer logger.Sync()

	kind, err := ipc.ParseKind(cfg.Backend)
	if err == nil {
		kind, err = ipc.DetectKind(kind, getenv)
	}
	if err != nil {
		logger.Error("No usable backend", zap.Error(err))
		return exitStartup
	}

	metrics := monitoring.NewMetrics()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := monitoring.Serve(ctx, cfg.MetricsAddr, metrics, logger); err != nil {
				logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	backend := newBackend(kind, getenv, metrics, logger)

	syms, path := loadSymbols(cfg.SymbolsPath, getenv, logger)
	var reloads <-chan config.Reload
	if cfg.Watch && path != "" {
		reloads, err = config.Watch(ctx, path, logger)
		if err != nil {
			logger.Warn("Symbol file will not be reloaded", zap.Error(err))
		}
	}

	engine := renamer.New(backend, syms.Resolver(), renamer.Options{
		Separator: syms.Separator,
		RateLimit: cfg.RenameRate,
		Burst:     cfg.RenameBurst,
	}, logger).WithMetrics(metrics)

	d := daemon.New(backend, engine, daemon.Options{
		Backoff: resilience.BackoffSettings{
			Min:         cfg.ReconnectMin,
			Max:         cfg.ReconnectMax,
			MaxAttempts: cfg.ReconnectAttempts,
		},
		Reloads: reloads,
		Metrics: metrics,
	}, logger)

	logger.Info("Starting wsnamer",
		zap.String("backend", backend.Name()),
		zap.String("symbols", path))

	if err := d.Run(ctx); err != nil {
		logger.Error("Shutting down", zap.Error(err))
		if errors.Is(err, daemon.ErrReconnectExhausted) {
			return exitReconnect
		}
		return exitStartup
	}
	return exitOK
}

func newBackend(kind ipc.Kind, getenv func(string) string, metrics *monitoring.Metrics, logger *zap.Logger) ipc.Backend {
	switch kind {
	case ipc.KindHyprland:
		return hyprland.New("", logger).WithEnv(getenv).WithMetrics(metrics)
	default:
		return sway.New(getenv("SWAYSOCK"), logger).WithMetrics(metrics)
	}
}

// loadSymbols discovers and reads the symbol file, returning defaults when
// there is none. The returned path is empty in that case.
func loadSymbols(explicit string, getenv func(string) string, logger *zap.Logger) (config.Symbols, string) {
	path, err := config.Discover(explicit, getenv)
	if err != nil {
		logger.Info("No symbol file found, using defaults")
		return config.DefaultSymbols(), ""
	}
	syms, _ := config.LoadSymbols(path, logger)
	return syms, path
}
