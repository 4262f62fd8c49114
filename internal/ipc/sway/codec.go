package sway

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// i3-ipc message types used by the renamer.
const (
	msgRunCommand uint32 = 0
	msgSubscribe  uint32 = 2
	msgGetTree    uint32 = 4

	eventMask      uint32 = 1 << 31
	eventWorkspace uint32 = eventMask | 0
	eventWindow    uint32 = eventMask | 3
	eventShutdown  uint32 = eventMask | 6
)

const (
	magic      = "i3-ipc"
	headerSize = len(magic) + 8
	// Sway trees on large setups reach a few MB; anything beyond this is
	// a desynchronized stream.
	maxPayload = 64 << 20
)

var errBadMagic = errors.New("bad magic")

// message is one framed i3-ipc message.
type message struct {
	Type    uint32
	Payload []byte
}

// writeMessage frames payload as "i3-ipc" <len> <type> <payload>. Sway uses
// the host byte order, which is little-endian on every platform it ships on.
func writeMessage(w io.Writer, typ uint32, payload []byte) error {
	buf := make([]byte, headerSize+len(payload))
	copy(buf, magic)
	binary.LittleEndian.PutUint32(buf[len(magic):], uint32(len(payload)))
	binary.LittleEndian.PutUint32(buf[len(magic)+4:], typ)
	copy(buf[headerSize:], payload)
	_, err := w.Write(buf)
	return err
}

// readMessage reads exactly one framed message.
func readMessage(r io.Reader) (message, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return message{}, err
	}
	if string(header[:len(magic)]) != magic {
		return message{}, fmt.Errorf("%w: %q", errBadMagic, header[:len(magic)])
	}
	size := binary.LittleEndian.Uint32(header[len(magic):])
	if size > maxPayload {
		return message{}, fmt.Errorf("payload of %d bytes exceeds limit", size)
	}
	msg := message{
		Type:    binary.LittleEndian.Uint32(header[len(magic)+4:]),
		Payload: make([]byte, size),
	}
	if _, err := io.ReadFull(r, msg.Payload); err != nil {
		return message{}, err
	}
	return msg, nil
}
