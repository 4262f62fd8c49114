package hyprland

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	controlSocket = ".socket.sock"
	eventSocket   = ".socket2.sock"
)

// socketDir finds the instance directory. Hyprland >= 0.40 uses
// $XDG_RUNTIME_DIR/hypr, older releases /tmp/hypr.
func socketDir(signature string, getenv func(string) string) (string, error) {
	if signature == "" {
		return "", errors.New("HYPRLAND_INSTANCE_SIGNATURE is not set")
	}
	var candidates []string
	if runtime := getenv("XDG_RUNTIME_DIR"); runtime != "" {
		candidates = append(candidates, filepath.Join(runtime, "hypr", signature))
	}
	candidates = append(candidates, filepath.Join("/tmp", "hypr", signature))

	for _, dir := range candidates {
		if _, err := os.Stat(filepath.Join(dir, eventSocket)); err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("no event socket for instance %s in %s", signature, strings.Join(candidates, ", "))
}

// control issues one request per connection, which is how the control
// socket expects to be used: write the request, read until EOF.
type control struct {
	path string
}

func (c control) request(ctx context.Context, req string) ([]byte, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "unix", c.path)
	if err != nil {
		return nil, err
	}
	defer nc.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = nc.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = nc.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if _, err := io.WriteString(nc, req); err != nil {
		return nil, ctxErr(ctx, err)
	}
	reply, err := io.ReadAll(nc)
	if err != nil {
		return nil, ctxErr(ctx, err)
	}
	return reply, nil
}

func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
