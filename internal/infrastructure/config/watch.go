package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// Reload is a re-read symbol file. Err is set when the file could not be
// read; Symbols then holds the defaults.
type Reload struct {
	Path    string
	Symbols Symbols
	Err     error
}

// Watch reloads path whenever it is written, created, renamed or removed
// and sends the result on the returned channel. The parent directory is
// watched so editors that replace the file are followed. The channel is
// closed when ctx is done.
func Watch(ctx context.Context, path string, logger *zap.Logger) (<-chan Reload, error) {
	return watch(ctx, path, DefaultDebounce, logger)
}

func watch(ctx context.Context, path string, debounce time.Duration, logger *zap.Logger) (<-chan Reload, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("config")

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	out := make(chan Reload, 1)
	go func() {
		defer close(out)
		defer watcher.Close()

		var timer *time.Timer
		var fire <-chan time.Time
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs || event.Op&reloadOps == 0 {
					continue
				}
				logger.Debug("Symbol file changed",
					zap.String("path", abs),
					zap.String("op", event.Op.String()))
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error", zap.Error(err))

			case <-fire:
				fire = nil
				syms, err := LoadSymbols(abs, logger)
				select {
				case out <- Reload{Path: abs, Symbols: syms, Err: err}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	logger.Info("Watching symbol file", zap.String("path", abs))
	return out, nil
}

const reloadOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
