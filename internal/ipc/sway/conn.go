package sway

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// conn is one i3-ipc socket connection. Requests are serialized so the
// event reader and the rename path can share the command connection.
type conn struct {
	mu sync.Mutex
	nc net.Conn
}

func dial(ctx context.Context, path string) (*conn, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, err
	}
	return &conn{nc: nc}, nil
}

// request sends one message and waits for the reply of the same type.
func (c *conn) request(ctx context.Context, typ uint32, payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.nc.SetDeadline(deadline)
		defer c.nc.SetDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.nc.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := writeMessage(c.nc, typ, payload); err != nil {
		return nil, ctxErr(ctx, err)
	}
	for {
		msg, err := readMessage(c.nc)
		if err != nil {
			return nil, ctxErr(ctx, err)
		}
		if msg.Type == typ {
			return msg.Payload, nil
		}
		if msg.Type&eventMask == 0 {
			return nil, fmt.Errorf("reply type %d does not match request type %d", msg.Type, typ)
		}
	}
}

// next blocks for the next message. Only used by the event reader, which
// owns its connection exclusively after the subscribe handshake.
func (c *conn) next() (message, error) {
	return readMessage(c.nc)
}

func (c *conn) Close() error {
	return c.nc.Close()
}

func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
