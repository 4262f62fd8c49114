package ipc

import (
	"errors"
	"fmt"
)

var (
	ErrConnection = errors.New("ipc connection failed")
	ErrProtocol   = errors.New("ipc protocol violation")
	ErrCommand    = errors.New("ipc command failed")
)

// ConnectionError reports an unavailable socket or failed handshake.
// It ends the current session; the daemon reconnects with backoff.
type ConnectionError struct {
	Backend string
	Op      string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// ProtocolError reports a malformed or unexpected wire message. The message
// is dropped and processing continues.
type ProtocolError struct {
	Backend string
	Payload string
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: malformed message %q: %v", e.Backend, truncate(e.Payload, 120), e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// CommandError reports a rename that could not be written or was rejected.
type CommandError struct {
	Backend string
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: command %q: %v", e.Backend, e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

func (e *CommandError) Is(target error) bool { return target == ErrCommand }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
