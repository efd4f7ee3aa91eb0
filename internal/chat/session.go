package chat

import (
	"sync"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

// State is the protocol state of a connection.
type State int

const (
	StateConnected State = iota
	StateInRoom
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateInRoom:
		return "in_room"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Session is the broadcaster's handle for one live connection. It is
// created by Broadcaster.Connect and is only mutated by the broadcaster.
type Session struct {
	id       string
	identity domain.Identity
	sink     Sink

	mu    sync.Mutex
	state State
	room  string
}

// ID returns the connection id.
func (s *Session) ID() string { return s.id }

// Identity returns the authenticated identity bound at connect time.
func (s *Session) Identity() domain.Identity { return s.identity }

// State returns the current protocol state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Room returns the current room, or "" outside a room.
func (s *Session) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}
