package hyprland

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/wsnamer/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/wsnamer/internal/ipc"
)

const backendName = "hyprland"

var _ ipc.Backend = (*Backend)(nil)

// Backend reads events from .socket2.sock and sends queries and dispatches
// through .socket.sock.
type Backend struct {
	dir     string
	getenv  func(string) string
	logger  *zap.Logger
	metrics *monitoring.Metrics

	mu     sync.Mutex
	ctl    *control
	events net.Conn
	// names maps workspace ids to their current names. Events identify
	// workspaces by name, and names change every time we rename one.
	names map[ipc.WorkspaceID]string
	// classes remembers the class of every window seen, including those on
	// special workspaces. An empty class marks a window opened before the
	// client set one.
	classes map[ipc.WindowID]string
}

// New creates a hyprland backend. An empty dir is resolved from
// $HYPRLAND_INSTANCE_SIGNATURE when connecting.
func New(dir string, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		dir:    dir,
		getenv: os.Getenv,
		logger: logger.Named(backendName),
	}
}

// WithEnv replaces the environment lookup used to locate the sockets.
func (b *Backend) WithEnv(getenv func(string) string) *Backend {
	b.getenv = getenv
	return b
}

// WithMetrics counts dropped protocol errors
func (b *Backend) WithMetrics(metrics *monitoring.Metrics) *Backend {
	b.metrics = metrics
	return b
}

// Name returns the backend name
func (b *Backend) Name() string { return backendName }

// Connect opens the event socket. Control requests dial per call.
func (b *Backend) Connect(ctx context.Context) error {
	dir := b.dir
	if dir == "" {
		var err error
		dir, err = socketDir(b.getenv("HYPRLAND_INSTANCE_SIGNATURE"), b.getenv)
		if err != nil {
			return b.connErr("locate socket", err)
		}
	}

	var d net.Dialer
	events, err := d.DialContext(ctx, "unix", filepath.Join(dir, eventSocket))
	if err != nil {
		return b.connErr("dial event socket", err)
	}

	ctl := &control{path: filepath.Join(dir, controlSocket)}
	if _, err := ctl.request(ctx, "version"); err != nil {
		events.Close()
		return b.connErr("dial control socket", err)
	}

	b.mu.Lock()
	b.ctl = ctl
	b.events = events
	b.names = make(map[ipc.WorkspaceID]string)
	b.classes = make(map[ipc.WindowID]string)
	b.mu.Unlock()

	b.logger.Debug("Connected", zap.String("dir", dir))
	return nil
}

type hyprWorkspace struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type hyprClient struct {
	Address   string        `json:"address"`
	Mapped    bool          `json:"mapped"`
	Class     string        `json:"class"`
	Workspace hyprWorkspace `json:"workspace"`
}

// Snapshot lists the regular (positive id) workspaces and their mapped
// clients. Special and named workspaces are left alone.
func (b *Backend) Snapshot(ctx context.Context) ([]ipc.WorkspaceSnapshot, error) {
	var workspaces []hyprWorkspace
	if err := b.query(ctx, "j/workspaces", &workspaces); err != nil {
		return nil, err
	}
	clients, err := b.clients(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(workspaces, func(i, j int) bool { return workspaces[i].ID < workspaces[j].ID })

	names := make(map[ipc.WorkspaceID]string, len(workspaces))
	index := make(map[int]int, len(workspaces))
	out := make([]ipc.WorkspaceSnapshot, 0, len(workspaces))
	for _, ws := range workspaces {
		if ws.ID <= 0 {
			continue
		}
		id := workspaceID(ws.ID)
		names[id] = ws.Name
		index[ws.ID] = len(out)
		out = append(out, ipc.WorkspaceSnapshot{ID: id, NativeName: string(id)})
	}

	classes := make(map[ipc.WindowID]string, len(clients))
	for _, c := range clients {
		if !c.Mapped {
			continue
		}
		win := windowID(c.Address)
		classes[win] = c.Class
		i, ok := index[c.Workspace.ID]
		if !ok {
			continue
		}
		out[i].Windows = append(out[i].Windows, ipc.WindowSnapshot{ID: win, AppID: c.Class})
	}

	b.mu.Lock()
	b.names = names
	b.classes = classes
	b.mu.Unlock()

	return out, nil
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

		lines := newLineReader(events)
		for {
			line, err := lines.next()
			if err != nil {
				if ctx.Err() == nil {
					errs <- b.connErr("read event", err)
				}
				return
			}

			ev, ok, err := b.translate(ctx, line)
			if err != nil {
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

// RenameWorkspace dispatches renameworkspace.
func (b *Backend) RenameWorkspace(ctx context.Context, ws ipc.WorkspaceID, name string) error {
	command := fmt.Sprintf("dispatch renameworkspace %s %s", ws, name)

	b.mu.Lock()
	ctl := b.ctl
	b.mu.Unlock()
	if ctl == nil {
		return &ipc.CommandError{Backend: backendName, Command: command, Err: errors.New("not connected")}
	}

	reply, err := ctl.request(ctx, command)
	if err != nil {
		return &ipc.CommandError{Backend: backendName, Command: command, Err: err}
	}
	if r := strings.TrimSpace(string(reply)); r != "ok" {
		return &ipc.CommandError{Backend: backendName, Command: command, Err: errors.New(r)}
	}
	return nil
}

// Close closes the event socket.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ctl = nil
	if b.events == nil {
		return nil
	}
	err := b.events.Close()
	b.events = nil
	return err
}

func (b *Backend) translate(ctx context.Context, line string) (ipc.Event, bool, error) {
	raw, err := parseLine(line)
	if err != nil {
		return ipc.Event{}, false, b.protoErr(line, err)
	}

	switch raw.Name {
	case "openwindow":
		addr, name, class, ok := b.openFields(raw.Data)
		if !ok {
			return ipc.Event{}, false, b.protoErr(line, errors.New("want 4 fields"))
		}
		win := windowID(addr)
		b.mu.Lock()
		b.classes[win] = class
		b.mu.Unlock()
		if isSpecial(name) {
			return ipc.Event{}, false, nil
		}
		ws, err := b.resolve(ctx, win, name)
		if err != nil {
			return ipc.Event{}, false, b.protoErr(line, err)
		}
		return ipc.Event{Type: ipc.WindowOpened, Window: win, AppID: class, To: ws}, true, nil

	case "closewindow":
		win := windowID(raw.Data)
		b.mu.Lock()
		delete(b.classes, win)
		b.mu.Unlock()
		return ipc.Event{Type: ipc.WindowClosed, Window: win}, true, nil

	case "movewindowv2":
		f, ok := raw.fields(3)
		if !ok {
			return ipc.Event{}, false, b.protoErr(line, errors.New("want 3 fields"))
		}
		id, err := strconv.Atoi(f[1])
		if err != nil {
			return ipc.Event{}, false, b.protoErr(line, err)
		}
		win := windowID(f[0])
		if id <= 0 {
			// Moved to a special workspace: hidden from every regular one.
			return ipc.Event{Type: ipc.WindowClosed, Window: win}, true, nil
		}
		// The tracker may never have seen a window coming back from a
		// special workspace, so the move carries its class.
		class, err := b.classOf(ctx, win)
		if err != nil {
			b.logger.Warn("Class lookup failed", zap.String("window", string(win)), zap.Error(err))
		}
		return ipc.Event{Type: ipc.WindowMoved, Window: win, AppID: class, To: workspaceID(id)}, true, nil

	case "workspacev2":
		id, _, err := b.workspaceFields(raw)
		if err != nil {
			return ipc.Event{}, false, b.protoErr(line, err)
		}
		if id <= 0 {
			return ipc.Event{}, false, nil
		}
		return ipc.Event{Type: ipc.WorkspaceFocusChanged, To: workspaceID(id)}, true, nil

	case "createworkspacev2", "renameworkspace":
		id, name, err := b.workspaceFields(raw)
		if err != nil {
			return ipc.Event{}, false, b.protoErr(line, err)
		}
		if id <= 0 {
			return ipc.Event{}, false, nil
		}
		b.mu.Lock()
		b.names[workspaceID(id)] = name
		b.mu.Unlock()
		if raw.Name == "renameworkspace" {
			return ipc.Event{}, false, nil
		}
		return ipc.Event{Type: ipc.WorkspaceReset, To: workspaceID(id)}, true, nil

	case "destroyworkspacev2":
		id, _, err := b.workspaceFields(raw)
		if err != nil {
			return ipc.Event{}, false, b.protoErr(line, err)
		}
		b.mu.Lock()
		delete(b.names, workspaceID(id))
		b.mu.Unlock()
		if id <= 0 {
			return ipc.Event{}, false, nil
		}
		return ipc.Event{Type: ipc.WorkspaceReset, To: workspaceID(id)}, true, nil

	case "windowtitlev2":
		f, ok := raw.fields(2)
		if !ok {
			return ipc.Event{}, false, nil
		}
		return b.lateClass(ctx, windowID(f[0]))
	}
	return ipc.Event{}, false, nil
}

// lateClass reports the class of a window that opened without one, once
// the client has set it. Hyprland has no class-change event, so title
// changes are used as the trigger.
func (b *Backend) lateClass(ctx context.Context, win ipc.WindowID) (ipc.Event, bool, error) {
	b.mu.Lock()
	class, known := b.classes[win]
	b.mu.Unlock()
	if !known || class != "" {
		return ipc.Event{}, false, nil
	}

	class, err := b.classOf(ctx, win)
	if err != nil || class == "" {
		return ipc.Event{}, false, err
	}
	return ipc.Event{Type: ipc.WindowRenamed, Window: win, AppID: class}, true, nil
}

// classOf returns the remembered class of win, asking the client list when
// none is known yet.
func (b *Backend) classOf(ctx context.Context, win ipc.WindowID) (string, error) {
	b.mu.Lock()
	class := b.classes[win]
	b.mu.Unlock()
	if class != "" {
		return class, nil
	}

	clients, err := b.clients(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range clients {
		if windowID(c.Address) != win || c.Class == "" {
			continue
		}
		b.mu.Lock()
		b.classes[win] = c.Class
		b.mu.Unlock()
		return c.Class, nil
	}
	return "", nil
}

// openFields splits openwindow data into address, workspace name and class.
// Names we rendered may contain commas, so the data is matched against the
// known names before falling back to a plain split.
func (b *Backend) openFields(data string) (addr, name, class string, ok bool) {
	addr, rest, ok := strings.Cut(data, ",")
	if !ok {
		return "", "", "", false
	}

	matched := false
	b.mu.Lock()
	for _, n := range b.names {
		if strings.HasPrefix(rest, n+",") && (!matched || len(n) > len(name)) {
			name, matched = n, true
		}
	}
	b.mu.Unlock()

	if matched {
		rest = rest[len(name)+1:]
	} else if name, rest, ok = strings.Cut(rest, ","); !ok {
		return "", "", "", false
	}

	class, _, ok = strings.Cut(rest, ",")
	return addr, name, class, ok
}

// resolve maps the workspace name from an event to an id. Several
// workspaces may render to the same name, in which case the client list is
// asked where the window actually is.
func (b *Backend) resolve(ctx context.Context, win ipc.WindowID, name string) (ipc.WorkspaceID, error) {
	b.mu.Lock()
	var matches []ipc.WorkspaceID
	for id, n := range b.names {
		if n == name {
			matches = append(matches, id)
		}
	}
	b.mu.Unlock()

	if len(matches) == 1 {
		return matches[0], nil
	}

	clients, err := b.clients(ctx)
	if err == nil {
		for _, c := range clients {
			if windowID(c.Address) == win && c.Workspace.ID > 0 {
				return workspaceID(c.Workspace.ID), nil
			}
		}
	}

	if id, convErr := strconv.Atoi(name); convErr == nil && id > 0 {
		return workspaceID(id), nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve workspace %q: %w", name, err)
	}
	return "", fmt.Errorf("unknown workspace %q", name)
}

func (b *Backend) workspaceFields(raw rawEvent) (int, string, error) {
	f, ok := raw.fields(2)
	if !ok {
		return 0, "", errors.New("want 2 fields")
	}
	id, err := strconv.Atoi(f[0])
	if err != nil {
		return 0, "", err
	}
	return id, f[1], nil
}

func (b *Backend) clients(ctx context.Context) ([]hyprClient, error) {
	var clients []hyprClient
	if err := b.query(ctx, "j/clients", &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (b *Backend) query(ctx context.Context, req string, v any) error {
	b.mu.Lock()
	ctl := b.ctl
	b.mu.Unlock()
	if ctl == nil {
		return b.connErr(req, errors.New("not connected"))
	}

	reply, err := ctl.request(ctx, req)
	if err != nil {
		return b.connErr(req, err)
	}
	if err := sonic.Unmarshal(reply, v); err != nil {
		return b.protoErr(string(reply), err)
	}
	return nil
}

func (b *Backend) connErr(op string, err error) error {
	return &ipc.ConnectionError{Backend: backendName, Op: op, Err: err}
}

func (b *Backend) protoErr(payload string, err error) error {
	return &ipc.ProtocolError{Backend: backendName, Payload: payload, Err: err}
}

func isSpecial(name string) bool {
	return strings.HasPrefix(name, "special")
}

func workspaceID(id int) ipc.WorkspaceID {
	return ipc.WorkspaceID(strconv.Itoa(id))
}

// windowID normalizes addresses: events omit the 0x prefix the JSON
// queries include.
func windowID(addr string) ipc.WindowID {
	return ipc.WindowID(strings.TrimPrefix(addr, "0x"))
}
