package sway

import (
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/wsnamer/internal/ipc"
)

const scratchpadName = "__i3_scratch"

// node is the subset of a sway tree node the renamer reads.
type node struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Type             string            `json:"type"`
	Num              *int              `json:"num,omitempty"`
	AppID            *string           `json:"app_id,omitempty"`
	WindowProperties *windowProperties `json:"window_properties,omitempty"`
	Nodes            []*node           `json:"nodes"`
	FloatingNodes    []*node           `json:"floating_nodes"`
}

type windowProperties struct {
	Class    string `json:"class"`
	Instance string `json:"instance"`
	Title    string `json:"title"`
}

func decodeTree(payload []byte) (*node, error) {
	var root node
	if err := sonic.Unmarshal(payload, &root); err != nil {
		return nil, err
	}
	return &root, nil
}

// isWindow reports whether n is a leaf container holding a client.
func (n *node) isWindow() bool {
	if n.Type != "con" && n.Type != "floating_con" {
		return false
	}
	if len(n.Nodes) > 0 || len(n.FloatingNodes) > 0 {
		return false
	}
	return n.appID() != ""
}

// appID prefers the Wayland app_id; xwayland clients fall back to the X11
// instance, then the class.
func (n *node) appID() string {
	if n.AppID != nil && *n.AppID != "" {
		return *n.AppID
	}
	if p := n.WindowProperties; p != nil {
		if p.Instance != "" {
			return p.Instance
		}
		return p.Class
	}
	return ""
}

// numbered reports whether n is a renameable workspace.
func (n *node) numbered() bool {
	return n.Type == "workspace" && n.Name != scratchpadName && n.Num != nil && *n.Num >= 0
}

func (n *node) workspaceID() ipc.WorkspaceID {
	return ipc.WorkspaceID(strconv.Itoa(*n.Num))
}

func (n *node) windowID() ipc.WindowID {
	return ipc.WindowID(strconv.FormatInt(n.ID, 10))
}

func (n *node) children() []*node {
	out := make([]*node, 0, len(n.Nodes)+len(n.FloatingNodes))
	out = append(out, n.Nodes...)
	return append(out, n.FloatingNodes...)
}

// windows lists the clients below n in tree order, tiled before floating.
func (n *node) windows() []*node {
	var out []*node
	var walk func(*node)
	walk = func(c *node) {
		if c.isWindow() {
			out = append(out, c)
			return
		}
		for _, child := range c.children() {
			walk(child)
		}
	}
	walk(n)
	return out
}

// workspaces lists the numbered workspaces in tree order.
func (n *node) workspaces() []*node {
	var out []*node
	var walk func(*node)
	walk = func(c *node) {
		if c.Type == "workspace" {
			if c.numbered() {
				out = append(out, c)
			}
			return
		}
		for _, child := range c.children() {
			walk(child)
		}
	}
	walk(n)
	return out
}

// workspaceOf finds the numbered workspace containing the window with id.
func (n *node) workspaceOf(id int64) *node {
	for _, ws := range n.workspaces() {
		for _, w := range ws.windows() {
			if w.ID == id {
				return ws
			}
		}
	}
	return nil
}

func snapshotFromTree(root *node) []ipc.WorkspaceSnapshot {
	workspaces := root.workspaces()
	out := make([]ipc.WorkspaceSnapshot, 0, len(workspaces))
	for _, ws := range workspaces {
		snap := ipc.WorkspaceSnapshot{
			ID:         ws.workspaceID(),
			NativeName: strconv.Itoa(*ws.Num),
		}
		for _, w := range ws.windows() {
			snap.Windows = append(snap.Windows, ipc.WindowSnapshot{ID: w.windowID(), AppID: w.appID()})
		}
		out = append(out, snap)
	}
	return out
}
