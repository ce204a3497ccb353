package client

import (
	"chat-relay/codec"
	"chat-relay/domain"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_TimeoutKeepsPartialFrame(t *testing.T) {
	req := require.New(t)
	conn, relay := net.Pipe()
	c := New(conn, 0)
	defer func() { _ = c.Close() }()

	payload, err := codec.EncodeServer(domain.Broadcast{FromUsername: "alice", Text: "hi"})
	req.NoError(err)
	var framed []byte
	framed = append(framed, 0, 0, 0, byte(len(payload)))
	framed = append(framed, payload...)

	// Given the relay sent only part of a frame
	go func() { _, _ = relay.Write(framed[:3]) }()

	// When the read deadline fires
	_, err = c.NextWithin(100 * time.Millisecond)
	var netErr net.Error
	req.ErrorAs(err, &netErr)
	req.True(netErr.Timeout())

	// Then the rest of the frame completes it
	go func() { _, _ = relay.Write(framed[3:]) }()
	frame, err := c.NextWithin(time.Second)
	req.NoError(err)
	req.Equal(domain.Broadcast{FromUsername: "alice", Text: "hi"}, frame)
}

func TestClient_BackToBackFrames(t *testing.T) {
	req := require.New(t)
	conn, relay := net.Pipe()
	c := New(conn, 0)
	defer func() { _ = c.Close() }()

	go func() {
		for _, frame := range []domain.ServerFrame{domain.UsernameAccepted{}, domain.Broadcast{FromUsername: "bob", Text: "yo"}} {
			payload, _ := codec.EncodeServer(frame)
			_ = codec.WriteFrame(relay, payload)
		}
	}()

	first, err := c.NextWithin(time.Second)
	req.NoError(err)
	req.Equal(domain.UsernameAccepted{}, first)
	second, err := c.NextWithin(time.Second)
	req.NoError(err)
	req.Equal(domain.Broadcast{FromUsername: "bob", Text: "yo"}, second)
}
