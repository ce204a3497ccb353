// Package runtime hosts the registry controller: the single goroutine that
// accepts sockets, owns every session and decides who receives what.
package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/runtime/mailbox"
	"chat-relay/runtime/workers"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

const acceptRetryDelay = 50 * time.Millisecond

var _ contract.Worker = (*Controller)(nil)

// Controller is the registry actor. Every Registry mutation happens inside
// Run, so the state needs no lock. Connection workers reach it only through
// its inbox.
type Controller struct {
	log          *slog.Logger
	listener     net.Listener
	registry     *Registry
	inbox        *mailbox.Mailbox[event.RegistryEvent]
	accepted     chan net.Conn
	filter       contract.TextFilter
	mailboxSize  int
	maxFrameSize int

	startOnce   sync.Once
	stopOnce    sync.Once
	connCtx     context.Context
	cancelConns context.CancelFunc
	connections sync.WaitGroup
}

// NewController builds the registry actor around an already bound listener.
// filter may be nil.
func NewController(log *slog.Logger, listener net.Listener, filter contract.TextFilter,
	mailboxSize, maxFrameSize int) *Controller {
	return &Controller{
		log:          log,
		listener:     listener,
		registry:     NewRegistry(),
		inbox:        mailbox.New[event.RegistryEvent](log, "registry", mailboxSize),
		accepted:     make(chan net.Conn),
		filter:       filter,
		mailboxSize:  mailboxSize,
		maxFrameSize: maxFrameSize,
	}
}

// Inbox is the handle connection workers use to reach the controller.
func (c *Controller) Inbox() *mailbox.Mailbox[event.RegistryEvent] { return c.inbox }

// Terminate asks the controller to stop at its next wait point.
func (c *Controller) Terminate() { c.inbox.Terminate() }

func (c *Controller) Addr() net.Addr { return c.listener.Addr() }

// Run is the controller loop. It returns nil after a poison pill or when ctx
// is canceled; connections are then closed without notice.
// A panic inside Run leaves the listener and the sessions in place, so the
// supervisor can restart it without losing state.
func (c *Controller) Run(ctx context.Context) error {
	c.startOnce.Do(func() {
		c.connCtx, c.cancelConns = context.WithCancel(ctx)
		go c.acceptLoop()
	})
	c.log.Info("Controller started", "address", c.listener.Addr().String())

	for {
		select {
		case <-ctx.Done():
			c.log.Info("Context done, stopping controller")
			c.stop()
			return nil
		case <-c.inbox.Poison():
			c.log.Info("Poison pill received, stopping controller")
			c.stop()
			return nil
		case conn := <-c.accepted:
			c.connect(ctx, conn)
		case evt := <-c.inbox.Messages():
			c.handle(ctx, evt)
		}
	}
}

// acceptLoop only hands sockets over; the controller goroutine decides
// what to do with them. It ends when the listener is closed.
func (c *Controller) acceptLoop() {
	for {
		conn, err := c.listener.Accept()
		if err != nil {
			if goerrors.Is(err, net.ErrClosed) {
				c.log.Debug("Listener closed, stopping accept loop")
				return
			}
			c.log.Warn("Accept failed", "error", err)
			time.Sleep(acceptRetryDelay)
			continue
		}
		select {
		case c.accepted <- conn:
		case <-c.connCtx.Done():
			_ = conn.Close()
			return
		}
	}
}

func (c *Controller) connect(ctx context.Context, conn net.Conn) {
	origin := event.Origin{Address: conn.RemoteAddr().String(), SessionID: uuid.New()}
	outbox := mailbox.New[domain.ServerFrame](c.log, fmt.Sprintf("outbox:%s", origin.Address), c.mailboxSize)
	worker := workers.NewConnection(c.log, conn, origin, outbox, c.inbox, c.maxFrameSize)

	c.handle(ctx, event.Connected{Origin: origin, Outbox: outbox})

	c.connections.Add(1)
	go func() {
		defer c.connections.Done()
		defer func() {
			if r := recover(); r != nil {
				c.log.Error("Connection worker panicked", "address", origin.Address, "panic", r)
				_ = conn.Close()
				_ = c.inbox.Send(c.connCtx, event.Disconnected{Origin: origin})
			}
		}()
		if err := worker.Run(c.connCtx); err != nil {
			c.log.Debug("Connection ended with transport error", "address", origin.Address, "error", err)
		}
	}()
}

func (c *Controller) handle(ctx context.Context, evt event.RegistryEvent) {
	switch e := evt.(type) {
	case event.Connected:
		c.onConnected(e)
	case event.UsernameRequested:
		c.onUsernameRequested(ctx, e)
	case event.ChatSent:
		c.onChatSent(ctx, e)
	case event.Disconnected:
		c.onDisconnected(e)
	default:
		c.log.Warn("Unknown registry event", "type", fmt.Sprintf("%T", evt))
	}
}

func (c *Controller) onConnected(e event.Connected) {
	session := domain.NewSession(e.SessionID, e.Address, e.Outbox)
	if evicted := c.registry.Connect(session); evicted != nil {
		c.log.Warn("Stale session replaced", "address", e.Address, "session_id", evicted.ID)
		evicted.Outbox.Terminate()
	}
	c.log.Info("Client connected", "address", e.Address, "session_id", e.SessionID, "sessions", c.registry.Len())
}

func (c *Controller) onUsernameRequested(ctx context.Context, e event.UsernameRequested) {
	session, ok := c.registry.Session(e.Address, e.SessionID)
	if !ok {
		c.log.Debug("Username request from unknown session", "address", e.Address)
		return
	}
	if err := domain.ValidateUsername(e.Name); err != nil {
		c.log.Info("Username rejected", "address", e.Address, "error", err)
		c.reply(ctx, session, domain.UsernameRejected{Reason: domain.ReasonInvalidUsername})
		return
	}
	if err := c.registry.Claim(e.Address, e.SessionID, e.Name); err != nil {
		c.log.Info("Username rejected", "address", e.Address, "username", e.Name, "error", err)
		c.reply(ctx, session, domain.UsernameRejected{Reason: domain.ReasonNameTaken})
		return
	}
	c.log.Info("Username accepted", "address", e.Address, "username", e.Name)
	c.reply(ctx, session, domain.UsernameAccepted{})
}

func (c *Controller) onChatSent(ctx context.Context, e event.ChatSent) {
	sender, ok := c.registry.Session(e.Address, e.SessionID)
	if !ok {
		c.log.Debug("Chat from unknown session", "address", e.Address)
		return
	}
	if !sender.Named {
		c.log.Debug("Chat from unnamed session dropped", "address", e.Address)
		return
	}
	text := e.Text
	if c.filter != nil {
		text = c.filter.Mask(text)
	}
	frame := domain.Broadcast{FromUsername: sender.Username, Text: text}
	for _, peer := range c.registry.Peers(e.Address) {
		c.reply(ctx, peer, frame)
	}
}

func (c *Controller) onDisconnected(e event.Disconnected) {
	session, ok := c.registry.Disconnect(e.Address, e.SessionID)
	if !ok {
		c.log.Debug("Disconnect for unknown session", "address", e.Address)
		return
	}
	c.log.Info("Client disconnected", "address", e.Address, "session_id", session.ID, "sessions", c.registry.Len())
}

// reply may block while the target outbox is full. A closed outbox means the
// connection is already gone; its Disconnected event is on its way.
func (c *Controller) reply(ctx context.Context, session *domain.Session, frame domain.ServerFrame) {
	if err := session.Outbox.Send(ctx, frame); err != nil && !goerrors.Is(err, errors.ErrMailboxClosed) {
		c.log.Warn("Failed to queue frame", "address", session.Address, "error", err)
	}
}

// stop releases everything the controller owns. Connections are canceled
// rather than notified; their Disconnected events are discarded by the
// closed inbox.
func (c *Controller) stop() {
	c.stopOnce.Do(func() {
		_ = c.listener.Close()
		c.inbox.Close()
		c.cancelConns()
		c.connections.Wait()
		c.log.Info("Controller stopped")
	})
}
