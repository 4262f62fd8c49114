// Package daemon runs the connection lifecycle around the renaming core.
//
// A session walks Disconnected -> Connecting -> Syncing -> Listening. Any
// failure drops back to Disconnected and the next session starts after a
// bounded exponential backoff. Each session reconciles the tracker with a
// fresh snapshot, so nothing seen before a disconnect is trusted after it.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/wsnamer/internal/domain/renamer"
	"github.com/GriffinCanCode/wsnamer/internal/domain/workspace"
	"github.com/GriffinCanCode/wsnamer/internal/infrastructure/config"
	"github.com/GriffinCanCode/wsnamer/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/wsnamer/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/wsnamer/internal/ipc"
	"github.com/GriffinCanCode/wsnamer/internal/shared/id"
)

// State is the connection state.
type State int32

const (
	Disconnected State = iota
	Connecting
	Syncing
	Listening
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Syncing:
		return "syncing"
	case Listening:
		return "listening"
	default:
		return "unknown"
	}
}

var (
	// ErrReconnectExhausted is returned by Run once the backoff policy
	// gives up.
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

	errStreamClosed  = errors.New("event stream closed")
	errRenameCircuit = errors.New("rename commands keep failing")
)

// DefaultFailureThreshold is the number of consecutive failed rename passes
// after which the connection is considered dead.
const DefaultFailureThreshold = 5

// Options configures a daemon.
type Options struct {
	Backoff resilience.BackoffSettings
	// FailureThreshold forces a reconnect after that many consecutive
	// failed rename passes.
	FailureThreshold uint32
	// Reloads delivers symbol table changes; nil disables reloading.
	Reloads <-chan config.Reload
	Metrics *monitoring.Metrics
}

// Daemon owns the tracker and engine and is the only goroutine touching
// them.
type Daemon struct {
	backend ipc.Backend
	engine  *renamer.Engine
	tracker *workspace.Tracker
	opts    Options
	reloads <-chan config.Reload
	metrics *monitoring.Metrics
	logger  *zap.Logger

	state atomic.Int32
}

// New creates a daemon for backend. The engine must rename through the
// same backend.
func New(backend ipc.Backend, engine *renamer.Engine, opts Options, logger *zap.Logger) *Daemon {
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = DefaultFailureThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Daemon{
		backend: backend,
		engine:  engine,
		tracker: workspace.NewTracker(),
		opts:    opts,
		reloads: opts.Reloads,
		metrics: opts.Metrics,
		logger:  logger.Named("daemon").With(zap.String("backend", backend.Name())),
	}
}

// State returns the current connection state.
func (d *Daemon) State() State {
	return State(d.state.Load())
}

// Tracker exposes the workspace state. Only safe to read once Run returned.
func (d *Daemon) Tracker() *workspace.Tracker {
	return d.tracker
}

// Run connects and renames until ctx is cancelled, reconnecting after
// failures. It returns nil on cancellation and ErrReconnectExhausted when
// the backoff policy stops.
func (d *Daemon) Run(ctx context.Context) error {
	policy := resilience.NewBackoff(d.opts.Backoff)
	defer d.setState(Disconnected)

	for {
		err := d.session(ctx, policy)
		d.setState(Disconnected)
		d.metrics.SetConnected(d.backend.Name(), false)
		if ctx.Err() != nil {
			d.logger.Info("Stopped")
			return nil
		}

		wait := policy.NextBackOff()
		if wait == resilience.Stop {
			d.logger.Error("Giving up", zap.Error(err))
			return fmt.Errorf("%w: %w", ErrReconnectExhausted, err)
		}

		d.logger.Warn("Disconnected",
			zap.Error(err),
			zap.Duration("retry_in", wait))
		d.metrics.IncReconnects(d.backend.Name())

		if !d.sleep(ctx, wait) {
			d.logger.Info("Stopped")
			return nil
		}
	}
}

// sleep waits for d while still taking symbol reloads, which the next
// sync renders. It reports false when ctx ends first.
func (d *Daemon) sleep(ctx context.Context, wait time.Duration) bool {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		case r, ok := <-d.reloads:
			if !ok {
				d.reloads = nil
				continue
			}
			d.applySymbols(r)
		}
	}
}

func (d *Daemon) session(ctx context.Context, policy backoff.BackOff) error {
	sid := id.NewSessionID()
	logger := d.logger.With(zap.String("session", sid.String()))

	d.setState(Connecting)
	logger.Debug("Connecting")
	if err := d.backend.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := d.backend.Close(); err != nil {
			logger.Debug("Close failed", zap.Error(err))
		}
		if started, err := sid.Timestamp(); err == nil {
			logger.Debug("Session closed", zap.Duration("duration", time.Since(started)))
		}
	}()

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.setState(Syncing)
	snapshot, err := d.backend.Snapshot(sessCtx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	d.tracker.Reset(snapshot)
	d.metrics.SetState(d.tracker.Counts())

	breaker := resilience.New(sid.String(), resilience.Settings{
		ReadyToTrip: resilience.ConsecutiveFailures(d.opts.FailureThreshold),
	})

	if err := d.render(sessCtx, breaker, d.tracker.Workspaces()); err != nil {
		return err
	}

	events, errs := d.backend.Subscribe(sessCtx)

	d.setState(Listening)
	d.metrics.SetConnected(d.backend.Name(), true)
	policy.Reset()
	workspaces, windows := d.tracker.Counts()
	logger.Info("Listening",
		zap.Int("workspaces", workspaces),
		zap.Int("windows", windows))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				select {
				case err := <-errs:
					if err != nil {
						return err
					}
				default:
				}
				return errStreamClosed
			}
			if err := d.handle(sessCtx, breaker, ev); err != nil {
				return err
			}

		case r, ok := <-d.reloads:
			if !ok {
				d.reloads = nil
				continue
			}
			d.applySymbols(r)
			if err := d.render(sessCtx, breaker, d.tracker.Workspaces()); err != nil {
				return err
			}
		}
	}
}

func (d *Daemon) handle(ctx context.Context, breaker *resilience.Breaker, ev ipc.Event) error {
	d.metrics.RecordEvent(d.backend.Name(), ev.Type.String())

	affected := d.tracker.Apply(ev)
	d.metrics.SetState(d.tracker.Counts())
	if d.logger.Core().Enabled(zap.DebugLevel) {
		d.logger.Debug("Event",
			zap.Stringer("type", ev.Type),
			zap.String("window", string(ev.Window)),
			zap.String("app_id", ev.AppID),
			zap.Int("affected", len(affected)))
	}
	return d.render(ctx, breaker, affected)
}

// render runs one rename pass through the breaker. Individual failures are
// tolerated; a tripped breaker ends the session.
func (d *Daemon) render(ctx context.Context, breaker *resilience.Breaker, ids []ipc.WorkspaceID) error {
	if len(ids) == 0 {
		return nil
	}

	err := breaker.Execute(func() error {
		return d.engine.Render(ctx, d.tracker, ids)
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if breaker.State() == resilience.StateOpen {
		return fmt.Errorf("%w: %w", errRenameCircuit, err)
	}
	return nil
}

func (d *Daemon) applySymbols(r config.Reload) {
	status := "ok"
	if r.Err != nil {
		status = "error"
	}
	d.metrics.RecordConfigReload(status)

	d.engine.SetResolver(r.Symbols.Resolver())
	d.engine.SetSeparator(r.Symbols.Separator)
	d.logger.Info("Symbol table reloaded",
		zap.String("path", r.Path),
		zap.Int("symbols", len(r.Symbols.AppSymbols)),
		zap.String("status", status))
}

func (d *Daemon) setState(s State) {
	if prev := State(d.state.Swap(int32(s))); prev != s {
		d.logger.Debug("State changed",
			zap.Stringer("from", prev),
			zap.Stringer("to", s))
	}
}
