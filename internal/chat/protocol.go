package chat

import "github.com/teamcuriosity/collective/internal/core/domain"

// Inbound frame types.
const (
	FrameJoinRoom    = "join_room"
	FrameLeaveRoom   = "leave_room"
	FrameSendMessage = "send_message"
)

// Outbound event types.
const (
	EventMessage = "message"
	EventError   = "error"
)

// Frame is one client request on a live connection. Frames carry no sender;
// the sender is always the connection's identity.
type Frame struct {
	Type    string `json:"type"`
	Room    string `json:"room,omitempty"`
	Content string `json:"content,omitempty"`
}

// Event is pushed from the server to a connection.
type Event struct {
	Type    string          `json:"type"`
	Message *domain.Message `json:"message,omitempty"`
	Error   *ErrorPayload   `json:"error,omitempty"`
}

// ErrorPayload is the structured failure sent only to the connection whose
// request failed.
type ErrorPayload struct {
	Kind    domain.Kind `json:"kind"`
	Message string      `json:"message"`
}

// Sink receives events for one connection. Deliver must not block; it
// returns false when the event could not be queued.
type Sink interface {
	Deliver(ev Event) bool
}
