package mailbox

import (
	"chat-relay/errors"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestMailbox_FIFO(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	m := New[int](log, "test", 8)

	for i := 0; i < 5; i++ {
		req.NoError(m.Send(context.Background(), i))
	}
	req.Equal(5, m.Len())
	req.Equal(8, m.Cap())

	for i := 0; i < 5; i++ {
		req.Equal(i, <-m.Messages())
	}
}

func TestMailbox_DefaultSize(t *testing.T) {
	req := require.New(t)
	m := New[string](logs.GetLoggerFromLevel(slog.LevelDebug), "test", 0)
	req.Equal(DefaultSize, m.Cap())
}

func TestMailbox_SendBlocksWhenFull(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	m := New[int](log, "test", 1)
	req.NoError(m.Send(context.Background(), 1))

	// Given a full mailbox, a second Send is suspended
	sent := make(chan error, 1)
	go func() { sent <- m.Send(context.Background(), 2) }()

	select {
	case <-sent:
		req.Fail("Send should block while the mailbox is full")
	case <-time.After(50 * time.Millisecond):
	}

	// When the consumer makes room
	req.Equal(1, <-m.Messages())

	// Then the blocked Send completes and order is kept
	select {
	case err := <-sent:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("Send did not resume after the consumer made room")
	}
	req.Equal(2, <-m.Messages())
}

func TestMailbox_SendGivesUpWithContext(t *testing.T) {
	req := require.New(t)
	m := New[int](logs.GetLoggerFromLevel(slog.LevelDebug), "test", 1)
	req.NoError(m.Send(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	req.ErrorIs(m.Send(ctx, 2), context.DeadlineExceeded)
}

func TestMailbox_SendAfterClose(t *testing.T) {
	req := require.New(t)
	m := New[int](logs.GetLoggerFromLevel(slog.LevelDebug), "test", 4)

	// Given the owner stopped
	m.Close()
	m.Close()

	// Then Send is discarded, not blocked, not a panic
	req.ErrorIs(m.Send(context.Background(), 1), errors.ErrMailboxClosed)
	req.Equal(0, m.Len())
	select {
	case <-m.Done():
	default:
		req.Fail("Done should be closed")
	}
}

func TestMailbox_CloseUnblocksPendingSend(t *testing.T) {
	req := require.New(t)
	m := New[int](logs.GetLoggerFromLevel(slog.LevelDebug), "test", 1)
	req.NoError(m.Send(context.Background(), 1))

	sent := make(chan error, 1)
	go func() { sent <- m.Send(context.Background(), 2) }()
	time.Sleep(20 * time.Millisecond)

	m.Close()

	select {
	case err := <-sent:
		req.ErrorIs(err, errors.ErrMailboxClosed)
	case <-time.After(time.Second):
		req.Fail("Close should release a blocked sender")
	}
}

func TestMailbox_TerminateIsIdempotent(t *testing.T) {
	req := require.New(t)
	m := New[int](logs.GetLoggerFromLevel(slog.LevelDebug), "test", 1)

	// When the pill is sent several times, no call blocks
	m.Terminate()
	m.Terminate()
	m.Terminate()

	// Then exactly one pill is pending
	<-m.Poison()
	select {
	case <-m.Poison():
		req.Fail("only one poison pill should be pending")
	default:
	}
}
