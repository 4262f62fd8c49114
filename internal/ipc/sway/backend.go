package sway

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/wsnamer/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/wsnamer/internal/ipc"
)

const backendName = "sway"

var _ ipc.Backend = (*Backend)(nil)

// Backend speaks the sway IPC protocol over two connections to $SWAYSOCK:
// one subscribed to events, one for queries and commands.
type Backend struct {
	socketPath string
	logger     *zap.Logger
	metrics    *monitoring.Metrics

	mu     sync.Mutex
	cmd    *conn
	events *conn
}

// New creates a sway backend for the given socket path. An empty path
// falls back to $SWAYSOCK.
func New(socketPath string, logger *zap.Logger) *Backend {
	if socketPath == "" {
		socketPath = os.Getenv("SWAYSOCK")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		socketPath: socketPath,
		logger:     logger.Named(backendName),
	}
}

// WithMetrics counts dropped protocol errors
func (b *Backend) WithMetrics(metrics *monitoring.Metrics) *Backend {
	b.metrics = metrics
	return b
}

// Name returns the backend name
func (b *Backend) Name() string { return backendName }

// Connect dials both connections and performs the subscribe handshake.
func (b *Backend) Connect(ctx context.Context) error {
	if b.socketPath == "" {
		return b.connErr("locate socket", errors.New("SWAYSOCK is not set"))
	}

	cmd, err := dial(ctx, b.socketPath)
	if err != nil {
		return b.connErr("dial command socket", err)
	}
	events, err := dial(ctx, b.socketPath)
	if err != nil {
		cmd.Close()
		return b.connErr("dial event socket", err)
	}

	payload, err := sonic.Marshal([]string{"window", "workspace", "shutdown"})
	if err != nil {
		cmd.Close()
		events.Close()
		return b.connErr("encode subscribe", err)
	}
	reply, err := events.request(ctx, msgSubscribe, payload)
	if err != nil {
		cmd.Close()
		events.Close()
		return b.connErr("subscribe", err)
	}
	var ack struct {
		Success bool `json:"success"`
	}
	if err := sonic.Unmarshal(reply, &ack); err != nil || !ack.Success {
		cmd.Close()
		events.Close()
		return b.connErr("subscribe", fmt.Errorf("rejected: %s", reply))
	}

	b.mu.Lock()
	b.cmd, b.events = cmd, events
	b.mu.Unlock()

	b.logger.Debug("Connected", zap.String("socket", b.socketPath))
	return nil
}

// Snapshot returns every numbered workspace with its windows.
func (b *Backend) Snapshot(ctx context.Context) ([]ipc.WorkspaceSnapshot, error) {
	root, err := b.tree(ctx)
	if err != nil {
		return nil, err
	}
	return snapshotFromTree(root), nil
}

// Subscribe starts the event reader.
func (b *Backend) Subscribe(ctx context.Context) (<-chan ipc.Event, <-chan error) {
	out := make(chan ipc.Event, 64)
	errs := make(chan error, 1)

	b.mu.Lock()
	events := b.events
	b.mu.Unlock()

	if events == nil {
		errs <- b.connErr("subscribe", errors.New("not connected"))
		close(out)
		return out, errs
	}

	stop := context.AfterFunc(ctx, func() { events.Close() })

	go func() {
		defer close(out)
		defer stop()

		for {
			msg, err := events.next()
			if err != nil {
				if ctx.Err() == nil {
					errs <- b.connErr("read event", err)
				}
				return
			}
			if msg.Type == eventShutdown {
				errs <- b.connErr("read event", errors.New("sway is shutting down"))
				return
			}

			ev, ok, err := b.translate(ctx, msg)
			if err != nil {
				if errors.Is(err, ipc.ErrConnection) {
					errs <- err
					return
				}
				b.logger.Warn("Dropping event", zap.Error(err))
				b.metrics.RecordProtocolError(backendName)
				continue
			}
			if !ok {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errs
}

// RenameWorkspace renames by number so the workspace keeps its position.
// Sway derives the number from the leading digits of the name, so the
// number is always kept as a prefix.
func (b *Backend) RenameWorkspace(ctx context.Context, ws ipc.WorkspaceID, name string) error {
	command := renameCommand(ws, name)

	b.mu.Lock()
	cmd := b.cmd
	b.mu.Unlock()
	if cmd == nil {
		return &ipc.CommandError{Backend: backendName, Command: command, Err: errors.New("not connected")}
	}

	reply, err := cmd.request(ctx, msgRunCommand, []byte(command))
	if err != nil {
		return &ipc.CommandError{Backend: backendName, Command: command, Err: err}
	}

	var results []struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := sonic.Unmarshal(reply, &results); err != nil {
		return &ipc.CommandError{Backend: backendName, Command: command, Err: fmt.Errorf("decode reply: %w", err)}
	}
	for _, r := range results {
		if !r.Success {
			return &ipc.CommandError{Backend: backendName, Command: command, Err: errors.New(r.Error)}
		}
	}
	return nil
}

// Close closes both connections.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	if b.events != nil {
		errs = append(errs, b.events.Close())
		b.events = nil
	}
	if b.cmd != nil {
		errs = append(errs, b.cmd.Close())
		b.cmd = nil
	}
	return errors.Join(errs...)
}

func (b *Backend) tree(ctx context.Context) (*node, error) {
	b.mu.Lock()
	cmd := b.cmd
	b.mu.Unlock()
	if cmd == nil {
		return nil, b.connErr("get tree", errors.New("not connected"))
	}

	payload, err := cmd.request(ctx, msgGetTree, nil)
	if err != nil {
		return nil, b.connErr("get tree", err)
	}
	root, err := decodeTree(payload)
	if err != nil {
		return nil, &ipc.ProtocolError{Backend: backendName, Payload: string(payload), Err: err}
	}
	return root, nil
}

type windowEvent struct {
	Change    string `json:"change"`
	Container *node  `json:"container"`
}

type workspaceEvent struct {
	Change  string `json:"change"`
	Current *node  `json:"current"`
}

// translate maps one sway event to a normalized event. ok is false for
// events that carry nothing the renamer needs.
func (b *Backend) translate(ctx context.Context, msg message) (ipc.Event, bool, error) {
	switch msg.Type {
	case eventWindow:
		var ev windowEvent
		if err := sonic.Unmarshal(msg.Payload, &ev); err != nil || ev.Container == nil {
			if err == nil {
				err = errors.New("missing container")
			}
			return ipc.Event{}, false, &ipc.ProtocolError{Backend: backendName, Payload: string(msg.Payload), Err: err}
		}
		return b.translateWindow(ctx, ev)

	case eventWorkspace:
		var ev workspaceEvent
		if err := sonic.Unmarshal(msg.Payload, &ev); err != nil {
			return ipc.Event{}, false, &ipc.ProtocolError{Backend: backendName, Payload: string(msg.Payload), Err: err}
		}
		if ev.Current == nil || !ev.Current.numbered() {
			return ipc.Event{}, false, nil
		}
		switch ev.Change {
		case "focus":
			return ipc.Event{Type: ipc.WorkspaceFocusChanged, To: ev.Current.workspaceID()}, true, nil
		case "init", "empty":
			// Sway destroys empty workspaces and recreates them under the
			// bare number.
			return ipc.Event{Type: ipc.WorkspaceReset, To: ev.Current.workspaceID()}, true, nil
		}
		return ipc.Event{}, false, nil
	}
	return ipc.Event{}, false, nil
}

func (b *Backend) translateWindow(ctx context.Context, ev windowEvent) (ipc.Event, bool, error) {
	c := ev.Container
	win := c.windowID()

	switch ev.Change {
	case "close":
		return ipc.Event{Type: ipc.WindowClosed, Window: win}, true, nil

	case "title":
		if c.appID() == "" {
			return ipc.Event{}, false, nil
		}
		return ipc.Event{Type: ipc.WindowRenamed, Window: win, AppID: c.appID()}, true, nil

	case "new", "move":
		// Window events do not say which workspace the container is on.
		root, err := b.tree(ctx)
		if err != nil {
			return ipc.Event{}, false, err
		}
		ws := root.workspaceOf(c.ID)
		if ws == nil {
			// Scratchpad or already gone.
			return ipc.Event{Type: ipc.WindowClosed, Window: win}, true, nil
		}
		typ := ipc.WindowOpened
		if ev.Change == "move" {
			typ = ipc.WindowMoved
		}
		appID := c.appID()
		if appID == "" {
			for _, w := range ws.windows() {
				if w.ID == c.ID {
					appID = w.appID()
				}
			}
		}
		return ipc.Event{Type: typ, Window: win, AppID: appID, To: ws.workspaceID()}, true, nil
	}
	return ipc.Event{}, false, nil
}

func (b *Backend) connErr(op string, err error) error {
	return &ipc.ConnectionError{Backend: backendName, Op: op, Err: err}
}

// renameCommand builds the sway command for ws. An empty name restores the
// bare number.
func renameCommand(ws ipc.WorkspaceID, name string) string {
	num := string(ws)
	target := num
	if name != "" && name != num {
		target = num + ": " + name
	}
	return fmt.Sprintf("rename workspace number %s to %s", num, quote(target))
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
