package workers

import (
	"chat-relay/codec"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/runtime/mailbox"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
)

var _ contract.Worker = (*Connection)(nil)

// Connection owns one accepted socket. It is a pure adapter: frames read from
// the socket become registry events, and frames queued in its outbox by the
// controller are written to the socket. It never touches registry state.
type Connection struct {
	log          *slog.Logger
	conn         net.Conn
	origin       event.Origin
	outbox       *mailbox.Mailbox[domain.ServerFrame]
	registry     contract.RegistryInbox
	maxFrameSize int
}

func NewConnection(log *slog.Logger, conn net.Conn, origin event.Origin,
	outbox *mailbox.Mailbox[domain.ServerFrame], registry contract.RegistryInbox,
	maxFrameSize int) *Connection {
	if maxFrameSize <= 0 {
		maxFrameSize = codec.DefaultMaxFrameSize
	}
	return &Connection{
		log:          log.With("address", origin.Address, "session_id", origin.SessionID),
		conn:         conn,
		origin:       origin,
		outbox:       outbox,
		registry:     registry,
		maxFrameSize: maxFrameSize,
	}
}

type readResult struct {
	payload []byte
	err     error
}

// Run multiplexes outbound write requests, the poison pill and inbound
// frames until one of them ends the connection. Every exit except a
// canceled context reports Disconnected to the registry so the session and
// its name are released. The returned error is the transport failure, if any.
func (w *Connection) Run(ctx context.Context) error {
	defer w.outbox.Close()
	defer func() { _ = w.conn.Close() }()

	reads := make(chan readResult)
	stopped := make(chan struct{})
	defer close(stopped)
	go w.readLoop(reads, stopped)
	go w.closeOnCancel(ctx, stopped)

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping connection")
			return nil
		case <-w.outbox.Poison():
			w.log.Debug("Poison pill received, closing connection")
			w.disconnect(ctx)
			return nil
		case frame := <-w.outbox.Messages():
			if err := w.write(frame); err != nil {
				if ctx.Err() != nil {
					w.log.Debug("Stopping connection during write")
					return nil
				}
				w.log.Warn("Write failed, closing connection", "error", err)
				w.disconnect(ctx)
				return err
			}
		case res := <-reads:
			if res.err != nil {
				if ctx.Err() != nil {
					w.log.Debug("Stopping connection")
					return nil
				}
				w.disconnect(ctx)
				if errors.Is(res.err, io.EOF) {
					w.log.Info("Peer closed connection")
					return nil
				}
				w.log.Warn("Read failed, closing connection", "error", res.err)
				return res.err
			}
			w.forward(ctx, res.payload)
		}
	}
}

// readLoop performs the blocking socket reads on behalf of Run. It exits
// after handing over the first error, or when Run has stopped listening.
// Run closes the socket on exit, which unblocks a pending read.
func (w *Connection) readLoop(reads chan<- readResult, stopped <-chan struct{}) {
	for {
		payload, err := codec.ReadFrame(w.conn, w.maxFrameSize)
		select {
		case reads <- readResult{payload: payload, err: err}:
		case <-stopped:
			return
		}
		if err != nil {
			return
		}
	}
}

// closeOnCancel closes the socket as soon as ctx ends. A write blocked on a
// peer that stopped reading never reaches the select in Run otherwise.
func (w *Connection) closeOnCancel(ctx context.Context, stopped <-chan struct{}) {
	select {
	case <-ctx.Done():
		_ = w.conn.Close()
	case <-stopped:
	}
}

func (w *Connection) write(frame domain.ServerFrame) error {
	payload, err := codec.EncodeServer(frame)
	if err != nil {
		// Not a transport failure: drop the frame, keep the socket.
		w.log.Error("Failed to encode frame", "error", err)
		return nil
	}
	return codec.WriteFrame(w.conn, payload)
}

func (w *Connection) forward(ctx context.Context, payload []byte) {
	frame, err := codec.DecodeClient(payload)
	if err != nil {
		w.log.Warn("Failed to decode frame, dropping it", "error", err)
		return
	}
	var evt event.RegistryEvent
	switch f := frame.(type) {
	case domain.SetUsername:
		evt = event.UsernameRequested{Origin: w.origin, Name: f.Name}
	case domain.ChatMessage:
		evt = event.ChatSent{Origin: w.origin, Text: f.Text}
	default:
		w.log.Warn("Unhandled client frame", "type", frame)
		return
	}
	_ = w.registry.Send(ctx, evt)
}

func (w *Connection) disconnect(ctx context.Context) {
	_ = w.registry.Send(ctx, event.Disconnected{Origin: w.origin})
}
