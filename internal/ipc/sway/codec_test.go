package sway

import (
	"bytes"
	"context"
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMessage(&buf, msgRunCommand, []byte(`rename workspace number 1 to "1: F"`)))
	require.NoError(t, writeMessage(&buf, msgGetTree, nil))

	raw := buf.Bytes()
	assert.Equal(t, "i3-ipc", string(raw[:6]))
	assert.Equal(t, uint32(35), binary.LittleEndian.Uint32(raw[6:10]))
	assert.Equal(t, msgRunCommand, binary.LittleEndian.Uint32(raw[10:14]))

	msg, err := readMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, msgRunCommand, msg.Type)
	assert.Equal(t, `rename workspace number 1 to "1: F"`, string(msg.Payload))

	msg, err = readMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, msgGetTree, msg.Type)
	assert.Empty(t, msg.Payload)
}

func TestReadMessageRejectsGarbage(t *testing.T) {
	_, err := readMessage(bytes.NewReader([]byte("i4-ipc\x00\x00\x00\x00\x00\x00\x00\x00")))
	assert.ErrorIs(t, err, errBadMagic)

	header := make([]byte, headerSize)
	copy(header, magic)
	binary.LittleEndian.PutUint32(header[len(magic):], maxPayload+1)
	_, err = readMessage(bytes.NewReader(header))
	assert.Error(t, err)

	// Truncated payload.
	var buf bytes.Buffer
	require.NoError(t, writeMessage(&buf, msgGetTree, []byte("{}")))
	_, err = readMessage(bytes.NewReader(buf.Bytes()[:buf.Len()-1]))
	assert.Error(t, err)
}

func TestRequestSkipsInterleavedEvents(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		msg, err := readMessage(server)
		if err != nil {
			return
		}
		_ = writeMessage(server, eventWindow, []byte(`{"change":"focus"}`))
		_ = writeMessage(server, msg.Type, []byte(`[{"success":true}]`))
	}()

	c := &conn{nc: client}
	reply, err := c.request(context.Background(), msgRunCommand, []byte("nop"))
	require.NoError(t, err)
	assert.Equal(t, `[{"success":true}]`, string(reply))
}

func TestRequestHonoursCancellation(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		// Swallow the request and never answer.
		_, _ = readMessage(server)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	c := &conn{nc: client}
	done := make(chan error, 1)
	go func() {
		_, err := c.request(ctx, msgGetTree, nil)
		done <- err
	}()
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
}
