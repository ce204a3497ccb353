// Package mailbox provides the bounded queue every actor in the relay reads
// from, plus a separate poison pill used to stop the actor.
package mailbox

import (
	"chat-relay/errors"
	"context"
	"log/slog"
	"sync"
)

// DefaultSize is the queue depth used when a caller passes a non-positive size.
const DefaultSize = 64

// Mailbox is a bounded FIFO from many producers to one consumer.
//
// Producers call Send and Terminate. The owning actor reads Messages and
// Poison in its select loop and calls Close when the loop exits, after which
// every Send is discarded with a log line instead of blocking forever.
type Mailbox[T any] struct {
	name     string
	log      *slog.Logger
	messages chan T
	poison   chan struct{}
	done     chan struct{}
	once     sync.Once
}

func New[T any](log *slog.Logger, name string, size int) *Mailbox[T] {
	if size <= 0 {
		size = DefaultSize
	}
	return &Mailbox[T]{
		name:     name,
		log:      log,
		messages: make(chan T, size),
		poison:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Send enqueues msg, blocking while the mailbox is full.
// It returns ErrMailboxClosed if the owner has stopped and ctx.Err() if the
// caller gives up first. Neither case is fatal for the caller.
func (m *Mailbox[T]) Send(ctx context.Context, msg T) error {
	select {
	case <-m.done:
		m.log.Warn("Mailbox closed, message discarded", "mailbox", m.name)
		return errors.ErrMailboxClosed
	default:
	}
	select {
	case m.messages <- msg:
		return nil
	case <-m.done:
		m.log.Warn("Mailbox closed, message discarded", "mailbox", m.name)
		return errors.ErrMailboxClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Terminate delivers the poison pill. A pill already pending is enough, so
// extra calls are no-ops and never block.
func (m *Mailbox[T]) Terminate() {
	select {
	case m.poison <- struct{}{}:
	default:
	}
}

func (m *Mailbox[T]) Messages() <-chan T { return m.messages }

func (m *Mailbox[T]) Poison() <-chan struct{} { return m.poison }

// Close marks the owner as gone. Messages still buffered are dropped.
func (m *Mailbox[T]) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *Mailbox[T]) Done() <-chan struct{} { return m.done }

func (m *Mailbox[T]) Name() string { return m.name }

func (m *Mailbox[T]) Len() int { return len(m.messages) }

func (m *Mailbox[T]) Cap() int { return cap(m.messages) }
