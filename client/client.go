// Package client speaks the relay wire protocol from the client side.
package client

import (
	"chat-relay/codec"
	"chat-relay/domain"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const readChunk = 4096

// Client reads through its own buffer so a read interrupted by a deadline
// keeps the bytes already received.
type Client struct {
	conn         net.Conn
	maxFrameSize int
	pending      []byte
}

// Dial connects to a relay. maxFrameSize bounds the frames accepted from the
// server; zero selects codec.DefaultMaxFrameSize.
func Dial(ctx context.Context, address string, maxFrameSize int) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	return New(conn, maxFrameSize), nil
}

func New(conn net.Conn, maxFrameSize int) *Client {
	if maxFrameSize <= 0 {
		maxFrameSize = codec.DefaultMaxFrameSize
	}
	return &Client{conn: conn, maxFrameSize: maxFrameSize}
}

func (c *Client) Send(frame domain.ClientFrame) error {
	payload, err := codec.EncodeClient(frame)
	if err != nil {
		return err
	}
	return codec.WriteFrame(c.conn, payload)
}

func (c *Client) SetUsername(name string) error {
	return c.Send(domain.SetUsername{Name: name})
}

func (c *Client) Say(text string) error {
	return c.Send(domain.ChatMessage{Text: text})
}

// Next blocks until the relay sends a frame or the connection fails.
func (c *Client) Next() (domain.ServerFrame, error) {
	chunk := make([]byte, readChunk)
	for {
		payload, rest, ok, err := codec.CutFrame(c.pending, c.maxFrameSize)
		if err != nil {
			return nil, err
		}
		if ok {
			c.pending = rest
			return codec.DecodeServer(payload)
		}
		n, err := c.conn.Read(chunk)
		c.pending = append(c.pending, chunk[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) && len(c.pending) > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
}

// NextWithin is Next with a read deadline. A timeout error means no complete
// frame arrived in time; bytes of a partial frame are kept for the next call,
// so the connection stays usable.
func (c *Client) NextWithin(timeout time.Duration) (domain.ServerFrame, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()
	return c.Next()
}

// WriteRaw sends bytes as one frame without encoding them.
func (c *Client) WriteRaw(payload []byte) error {
	return codec.WriteFrame(c.conn, payload)
}

func (c *Client) LocalAddr() net.Addr { return c.conn.LocalAddr() }

func (c *Client) Close() error { return c.conn.Close() }
