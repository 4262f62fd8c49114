// Package renamer turns tracked workspace contents into display names and
// issues rename commands when a name changes.
package renamer

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/wsnamer/internal/domain/symbols"
	"github.com/GriffinCanCode/wsnamer/internal/domain/workspace"
	"github.com/GriffinCanCode/wsnamer/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/wsnamer/internal/ipc"
)

// DefaultSeparator joins symbols in a workspace name.
const DefaultSeparator = " "

// Renamer is the part of a backend the engine drives.
type Renamer interface {
	Name() string
	RenameWorkspace(ctx context.Context, ws ipc.WorkspaceID, name string) error
}

// Options tunes the engine.
type Options struct {
	Separator string
	// RateLimit caps rename commands per second; zero disables the limit.
	RateLimit float64
	Burst     int
}

// Engine computes candidate names and renames workspaces whose candidate
// differs from the last name sent. Like the tracker it is owned by the
// event loop and not safe for concurrent use.
type Engine struct {
	renamer   Renamer
	resolver  *symbols.Resolver
	separator string
	limiter   *rate.Limiter
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// New creates an engine
func New(renamer Renamer, resolver *symbols.Resolver, opts Options, logger *zap.Logger) *Engine {
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	if resolver == nil {
		resolver = symbols.NewResolver(nil, "")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Engine{
		renamer:   renamer,
		resolver:  resolver,
		separator: opts.Separator,
		limiter:   limiter,
		logger:    logger.Named("renamer"),
	}
}

// WithMetrics adds metrics tracking to the engine
func (e *Engine) WithMetrics(metrics *monitoring.Metrics) *Engine {
	e.metrics = metrics
	return e
}

// SetResolver swaps the symbol table, e.g. after a config reload.
func (e *Engine) SetResolver(resolver *symbols.Resolver) {
	if resolver != nil {
		e.resolver = resolver
	}
}

// SetSeparator changes the string joining symbols. Empty restores the
// default.
func (e *Engine) SetSeparator(sep string) {
	if sep == "" {
		sep = DefaultSeparator
	}
	e.separator = sep
}

// Candidate computes the display name for a workspace. A workspace without
// windows shows its native name so it is never blank.
func (e *Engine) Candidate(v workspace.View) string {
	parts := make([]string, 0, len(v.Apps))
	for _, app := range v.Apps {
		parts = append(parts, e.resolver.Resolve(app))
	}
	name := strings.Join(parts, e.separator)
	if name == "" {
		return v.NativeName
	}
	return name
}

// Render renames each of ids whose candidate changed. Command failures are
// logged and leave the last rendered name untouched so the next event
// retries; they are also returned joined for the caller's bookkeeping.
// Only context cancellation stops the pass early.
func (e *Engine) Render(ctx context.Context, tracker *workspace.Tracker, ids []ipc.WorkspaceID) error {
	var errs []error
	for _, id := range ids {
		if err := e.render(ctx, tracker, id); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RenderAll renders every tracked workspace.
func (e *Engine) RenderAll(ctx context.Context, tracker *workspace.Tracker) error {
	return e.Render(ctx, tracker, tracker.Workspaces())
}

func (e *Engine) render(ctx context.Context, tracker *workspace.Tracker, id ipc.WorkspaceID) error {
	view, ok := tracker.View(id)
	if !ok {
		return nil
	}

	candidate := e.Candidate(view)
	backend := e.renamer.Name()
	if view.Rendered && view.LastRendered == candidate {
		e.metrics.RecordRename(backend, "skipped", 0)
		return nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	err := e.renamer.RenameWorkspace(ctx, id, candidate)
	elapsed := time.Since(start)
	if err != nil {
		e.metrics.RecordRename(backend, "failed", elapsed)
		if ctx.Err() == nil {
			e.logger.Warn("Rename failed",
				zap.String("workspace", string(id)),
				zap.String("name", candidate),
				zap.Error(err))
		}
		return err
	}

	tracker.MarkRendered(id, candidate)
	e.metrics.RecordRename(backend, "sent", elapsed)
	e.logger.Debug("Renamed workspace",
		zap.String("workspace", string(id)),
		zap.String("name", candidate))
	return nil
}
