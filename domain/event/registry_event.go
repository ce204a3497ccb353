// Package event defines the internal messages connection workers send to the
// registry controller. None of them is visible on the wire.
package event

import (
	"chat-relay/domain"

	"github.com/google/uuid"
)

// Origin identifies the connection an event comes from. The session ID lets
// the controller ignore late events from a connection that has already been
// replaced at the same address.
type Origin struct {
	Address   string
	SessionID uuid.UUID
}

func (o Origin) Source() Origin { return o }

type RegistryEvent interface {
	Source() Origin
}

// Connected registers a freshly accepted connection and its outbound mailbox.
type Connected struct {
	Origin
	Outbox domain.Outbox
}

type UsernameRequested struct {
	Origin
	Name string
}

type ChatSent struct {
	Origin
	Text string
}

// Disconnected is emitted exactly once by a connection worker when its socket
// is closed by the peer, fails, or the worker is told to stop.
type Disconnected struct {
	Origin
}
