// Package domain contains core concepts of the relay.
// This file defines the two wire frame families.
// No runtime, network, or encoding logic should be added here.
package domain

// ClientFrame is a frame sent by a client to the relay.
type ClientFrame interface {
	clientFrame()
}

// SetUsername claims a display name for the sending connection.
type SetUsername struct {
	Name string
}

// ChatMessage is a line of text to broadcast to every other named session.
type ChatMessage struct {
	Text string
}

func (SetUsername) clientFrame() {}
func (ChatMessage) clientFrame() {}

// ServerFrame is a frame sent by the relay to a client.
type ServerFrame interface {
	serverFrame()
}

type UsernameAccepted struct{}

type UsernameRejected struct {
	Reason string
}

type Broadcast struct {
	FromUsername string
	Text         string
}

func (UsernameAccepted) serverFrame() {}
func (UsernameRejected) serverFrame() {}
func (Broadcast) serverFrame()        {}

const (
	ReasonNameTaken       = "name taken"
	ReasonInvalidUsername = "invalid username"
)
