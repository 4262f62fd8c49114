package workspace

import (
	"github.com/GriffinCanCode/wsnamer/internal/ipc"
)

// Window is a tracked client.
type Window struct {
	ID        ipc.WindowID
	AppID     string
	Workspace ipc.WorkspaceID
}

// Workspace holds the members of one workspace in arrival order.
type Workspace struct {
	ID         ipc.WorkspaceID
	NativeName string

	members      []ipc.WindowID
	lastRendered *string
}

// View is a read-only copy of a workspace handed to the renaming engine.
type View struct {
	ID         ipc.WorkspaceID
	NativeName string
	// Apps lists the members' application identifiers in arrival order.
	Apps []string
	// LastRendered is valid only when Rendered is true.
	LastRendered string
	Rendered     bool
}

// Tracker is the in-memory workspace -> windows state machine. It is not
// safe for concurrent use; the daemon's event loop owns it.
type Tracker struct {
	workspaces map[ipc.WorkspaceID]*Workspace
	order      []ipc.WorkspaceID
	windows    map[ipc.WindowID]*Window
	affected   []ipc.WorkspaceID
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		workspaces: make(map[ipc.WorkspaceID]*Workspace),
		windows:    make(map[ipc.WindowID]*Window),
	}
}

// Apply routes a normalized event to its handler and returns the
// workspaces whose membership or content changed.
func (t *Tracker) Apply(ev ipc.Event) []ipc.WorkspaceID {
	switch ev.Type {
	case ipc.WindowOpened:
		t.WindowOpened(ev.Window, ev.AppID, ev.To)
	case ipc.WindowClosed:
		t.WindowClosed(ev.Window)
	case ipc.WindowMoved:
		t.WindowMoved(ev.Window, ev.AppID, ev.From, ev.To)
	case ipc.WindowRenamed:
		t.WindowRenamed(ev.Window, ev.AppID)
	case ipc.WorkspaceReset:
		t.WorkspaceReset(ev.To)
	case ipc.WorkspaceFocusChanged:
		// Focus does not change membership, but a workspace seen for the
		// first time is recorded.
		t.affected = t.affected[:0]
		if ev.To != "" {
			t.ensure(ev.To)
		}
	default:
		t.affected = t.affected[:0]
	}
	return t.Affected()
}

// WindowOpened appends a window to ws, creating the workspace if needed.
// A window that is already tracked is moved instead of duplicated.
func (t *Tracker) WindowOpened(win ipc.WindowID, appID string, ws ipc.WorkspaceID) {
	t.affected = t.affected[:0]
	if ws == "" {
		return
	}
	if _, ok := t.windows[win]; ok {
		t.WindowMoved(win, appID, "", ws)
		return
	}
	t.insert(win, appID, ws)
	t.touch(ws)
}

// WindowClosed removes the window wherever it is. Unknown windows are
// ignored since backends report some closes twice.
func (t *Tracker) WindowClosed(win ipc.WindowID) {
	t.affected = t.affected[:0]
	w, ok := t.windows[win]
	if !ok {
		return
	}
	t.remove(w)
	delete(t.windows, win)
	t.touch(w.Workspace)
}

// WindowMoved relocates a window to the end of to. The tracker's own index
// decides the source; from is informational. An unknown window is opened
// on to. Moves within the same workspace keep the window's position.
func (t *Tracker) WindowMoved(win ipc.WindowID, appID string, from, to ipc.WorkspaceID) {
	t.affected = t.affected[:0]
	if to == "" {
		return
	}

	w, ok := t.windows[win]
	if !ok {
		t.insert(win, appID, to)
		t.touch(to)
		return
	}

	if w.Workspace == to {
		if appID != "" && appID != w.AppID {
			w.AppID = appID
			t.touch(to)
		}
		return
	}

	t.remove(w)
	t.touch(w.Workspace)
	if appID != "" {
		w.AppID = appID
	}
	w.Workspace = to
	dst := t.ensure(to)
	dst.members = append(dst.members, win)
	t.touch(to)
}

// WindowRenamed updates the identifier in place.
func (t *Tracker) WindowRenamed(win ipc.WindowID, appID string) {
	t.affected = t.affected[:0]
	w, ok := t.windows[win]
	if !ok || appID == "" || w.AppID == appID {
		return
	}
	w.AppID = appID
	t.touch(w.Workspace)
}

// WorkspaceReset forgets the name last rendered on ws. The window manager
// has created or destroyed it, so whatever name it shows now is native.
// Membership is untouched and nothing is reported as affected; the next
// change to ws renders it again.
func (t *Tracker) WorkspaceReset(ws ipc.WorkspaceID) {
	t.affected = t.affected[:0]
	if ws == "" {
		return
	}
	t.ensure(ws).lastRendered = nil
}

// Affected returns the workspaces changed by the last applied event.
func (t *Tracker) Affected() []ipc.WorkspaceID {
	out := make([]ipc.WorkspaceID, len(t.affected))
	copy(out, t.affected)
	return out
}

// Reset replaces all membership with a fresh snapshot. Workspaces missing
// from the snapshot are kept empty; only the snapshot's workspaces are
// reported as affected. Rendered names are forgotten since the window
// manager may have restarted and dropped them.
func (t *Tracker) Reset(snapshot []ipc.WorkspaceSnapshot) {
	t.windows = make(map[ipc.WindowID]*Window)
	for _, ws := range t.workspaces {
		ws.members = nil
		ws.lastRendered = nil
	}

	t.affected = t.affected[:0]
	for _, snap := range snapshot {
		ws := t.ensure(snap.ID)
		if snap.NativeName != "" {
			ws.NativeName = snap.NativeName
		}
		for _, w := range snap.Windows {
			if _, dup := t.windows[w.ID]; dup {
				continue
			}
			t.insert(w.ID, w.AppID, snap.ID)
		}
		t.touch(snap.ID)
	}
}

// Workspaces returns every known workspace id in creation order.
func (t *Tracker) Workspaces() []ipc.WorkspaceID {
	out := make([]ipc.WorkspaceID, len(t.order))
	copy(out, t.order)
	return out
}

// View returns a copy of the workspace state.
func (t *Tracker) View(id ipc.WorkspaceID) (View, bool) {
	ws, ok := t.workspaces[id]
	if !ok {
		return View{}, false
	}
	v := View{
		ID:         ws.ID,
		NativeName: ws.NativeName,
		Apps:       make([]string, 0, len(ws.members)),
	}
	for _, win := range ws.members {
		v.Apps = append(v.Apps, t.windows[win].AppID)
	}
	if ws.lastRendered != nil {
		v.LastRendered = *ws.lastRendered
		v.Rendered = true
	}
	return v, true
}

// Members returns the window ids of a workspace in arrival order.
func (t *Tracker) Members(id ipc.WorkspaceID) []ipc.WindowID {
	ws, ok := t.workspaces[id]
	if !ok {
		return nil
	}
	out := make([]ipc.WindowID, len(ws.members))
	copy(out, ws.members)
	return out
}

// Window returns a tracked window.
func (t *Tracker) Window(id ipc.WindowID) (Window, bool) {
	w, ok := t.windows[id]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// MarkRendered records the name last sent to the backend for id.
func (t *Tracker) MarkRendered(id ipc.WorkspaceID, name string) {
	ws, ok := t.workspaces[id]
	if !ok {
		return
	}
	ws.lastRendered = &name
}

// Counts returns the number of workspaces and windows tracked.
func (t *Tracker) Counts() (workspaces, windows int) {
	return len(t.workspaces), len(t.windows)
}

func (t *Tracker) ensure(id ipc.WorkspaceID) *Workspace {
	ws, ok := t.workspaces[id]
	if !ok {
		ws = &Workspace{ID: id, NativeName: string(id)}
		t.workspaces[id] = ws
		t.order = append(t.order, id)
	}
	return ws
}

func (t *Tracker) insert(win ipc.WindowID, appID string, id ipc.WorkspaceID) {
	ws := t.ensure(id)
	ws.members = append(ws.members, win)
	t.windows[win] = &Window{ID: win, AppID: appID, Workspace: id}
}

func (t *Tracker) remove(w *Window) {
	ws, ok := t.workspaces[w.Workspace]
	if !ok {
		return
	}
	for i, member := range ws.members {
		if member == w.ID {
			ws.members = append(ws.members[:i], ws.members[i+1:]...)
			return
		}
	}
}

func (t *Tracker) touch(id ipc.WorkspaceID) {
	for _, a := range t.affected {
		if a == id {
			return
		}
	}
	t.affected = append(t.affected, id)
}
