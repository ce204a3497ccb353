// Package domain contains core concepts of the relay.
// This file defines Session entities and related invariants.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Outbox is the write side of a connection's mailbox.
type Outbox interface {
	Send(ctx context.Context, frame ServerFrame) error
	Terminate()
}

// Session is the registry's view of one accepted connection.
// It is born unnamed and becomes named after a successful SetUsername.
type Session struct {
	ID          uuid.UUID
	Address     string
	Username    string
	Named       bool
	Outbox      Outbox
	ConnectedAt time.Time
}

func NewSession(id uuid.UUID, address string, outbox Outbox) *Session {
	return &Session{
		ID:          id,
		Address:     address,
		Outbox:      outbox,
		ConnectedAt: time.Now().UTC(),
	}
}

func (s *Session) Name(username string) {
	s.Username = username
	s.Named = true
}
