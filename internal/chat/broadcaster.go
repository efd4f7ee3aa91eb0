// Package chat implements room-based live chat: the room directory, the
// per-connection protocol state machine, and fan-out of persisted messages.
//
// A Broadcaster is constructed once by the composition root and shared by
// every connection. Messages are always written to the message store before
// they are fanned out, so a message seen live is also in history. Fan-out
// skips the sending connection; clients render their own messages locally.
package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/teamcuriosity/collective/internal/api/metrics"
	"github.com/teamcuriosity/collective/internal/core/domain"
	"github.com/teamcuriosity/collective/internal/infrastructure/queue"
)

// MessageStore persists a chat message and returns the stored record.
type MessageStore interface {
	Append(ctx context.Context, room, senderID, content string) (*domain.Message, error)
}

// SendLimiter throttles message sends per identity.
type SendLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Options configures a Broadcaster.
type Options struct {
	// FanoutWorkers is the number of room-sharded delivery workers.
	FanoutWorkers int
	// Limiter is optional; nil disables send throttling.
	Limiter SendLimiter
}

// Broadcaster owns every live session and routes their frames.
type Broadcaster struct {
	dir     *Directory
	store   MessageStore
	limiter SendLimiter
	fanout  *queue.Dispatcher
	log     zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewBroadcaster(store MessageStore, opts Options, log zerolog.Logger) *Broadcaster {
	b := &Broadcaster{
		dir:      NewDirectory(),
		store:    store,
		limiter:  opts.Limiter,
		log:      log.With().Str("component", "chat").Logger(),
		sessions: make(map[string]*Session),
	}
	b.fanout = queue.NewDispatcher(opts.FanoutWorkers, b.deliver, log)
	return b
}

// Start launches the fan-out workers. They stop when ctx is cancelled.
func (b *Broadcaster) Start(ctx context.Context) {
	b.fanout.Start(ctx)
}

// Wait blocks until the fan-out workers have stopped.
func (b *Broadcaster) Wait() {
	b.fanout.Wait()
}

// Directory exposes the room directory for read-only inspection.
func (b *Broadcaster) Directory() *Directory {
	return b.dir
}

// Connect registers a new connection for identity. The session starts
// outside any room.
func (b *Broadcaster) Connect(identity domain.Identity, sink Sink) *Session {
	s := &Session{
		id:       uuid.NewString(),
		identity: identity,
		sink:     sink,
		state:    StateConnected,
	}

	b.mu.Lock()
	b.sessions[s.id] = s
	b.mu.Unlock()

	metrics.ActiveSessions.Inc()
	b.log.Debug().Str("conn_id", s.id).Str("user_id", identity.ID).Msg("session connected")
	return s
}

// JoinRoom moves s into room, leaving its previous room if any. No history
// is pushed; clients fetch history separately. Joining on a disconnected
// session is a no-op.
func (b *Broadcaster) JoinRoom(_ context.Context, s *Session, room string) error {
	if err := domain.ValidateRoomName(room); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDisconnected {
		return nil
	}
	b.dir.Join(room, s.id)
	s.room = room
	s.state = StateInRoom
	metrics.ActiveRooms.Set(float64(b.dir.RoomCount()))

	b.log.Debug().Str("conn_id", s.id).Str("room", room).Msg("joined room")
	return nil
}

// LeaveRoom takes s out of its room without closing the connection.
func (b *Broadcaster) LeaveRoom(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInRoom {
		return
	}
	room := b.dir.Leave(s.id)
	s.room = ""
	s.state = StateConnected
	metrics.ActiveRooms.Set(float64(b.dir.RoomCount()))

	b.log.Debug().Str("conn_id", s.id).Str("room", room).Msg("left room")
}

// SendMessage persists content as a message from s's identity in s's room
// and, once stored, queues it for every other connection in that room.
// Nothing is fanned out when persistence fails.
func (b *Broadcaster) SendMessage(ctx context.Context, s *Session, content string) (*domain.Message, error) {
	s.mu.Lock()
	state, room := s.state, s.room
	s.mu.Unlock()

	if state != StateInRoom {
		return nil, domain.ErrNotInRoom
	}
	if err := domain.ValidateMessageContent(content); err != nil {
		return nil, err
	}
	if err := b.checkLimit(ctx, s.identity.ID); err != nil {
		return nil, err
	}

	msg, err := b.store.Append(ctx, room, s.identity.ID, content)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	b.fanout.Enqueue(queue.Delivery{Message: msg, ExcludeConnID: s.id})
	return msg, nil
}

func (b *Broadcaster) checkLimit(ctx context.Context, identityID string) error {
	if b.limiter == nil {
		return nil
	}
	allowed, err := b.limiter.Allow(ctx, "chat:send:"+identityID)
	if err != nil {
		b.log.Warn().Err(err).Str("user_id", identityID).Msg("rate limit check failed, allowing send")
		return nil
	}
	if !allowed {
		return domain.ErrRateLimited
	}
	return nil
}

// Disconnect ends s. It is safe to call more than once and from any state.
func (b *Broadcaster) Disconnect(s *Session) {
	s.mu.Lock()
	if s.state == StateDisconnected {
		s.mu.Unlock()
		return
	}
	room := b.dir.Leave(s.id)
	s.room = ""
	s.state = StateDisconnected
	s.mu.Unlock()

	b.mu.Lock()
	delete(b.sessions, s.id)
	b.mu.Unlock()

	metrics.ActiveSessions.Dec()
	metrics.ActiveRooms.Set(float64(b.dir.RoomCount()))
	b.log.Debug().Str("conn_id", s.id).Str("room", room).Msg("session disconnected")
}

// Handle applies one inbound frame. Failures are reported to s alone and
// never reach other sessions.
func (b *Broadcaster) Handle(ctx context.Context, s *Session, f Frame) {
	var err error
	switch f.Type {
	case FrameJoinRoom:
		err = b.JoinRoom(ctx, s, f.Room)
	case FrameLeaveRoom:
		b.LeaveRoom(s)
	case FrameSendMessage:
		_, err = b.SendMessage(ctx, s, f.Content)
	default:
		err = fmt.Errorf("%w: unknown frame type %q", domain.ErrValidation, f.Type)
	}
	if err != nil {
		b.reportError(s, err)
	}
}

func (b *Broadcaster) reportError(s *Session, err error) {
	kind := domain.KindOf(err)
	msg := err.Error()
	if kind == domain.KindInternal {
		b.log.Error().Err(err).Str("conn_id", s.id).Str("user_id", s.identity.ID).Msg("chat request failed")
		msg = "message could not be stored"
	}
	metrics.ChatErrorsTotal.WithLabelValues(string(kind)).Inc()

	if !s.sink.Deliver(Event{Type: EventError, Error: &ErrorPayload{Kind: kind, Message: msg}}) {
		b.log.Warn().Str("conn_id", s.id).Msg("could not report error to sender")
	}
}

// deliver runs on a fan-out worker.
func (b *Broadcaster) deliver(_ context.Context, d queue.Delivery) {
	ev := Event{Type: EventMessage, Message: d.Message}
	for _, connID := range b.dir.MembersOf(d.Message.Room) {
		if connID == d.ExcludeConnID {
			continue
		}

		b.mu.RLock()
		s := b.sessions[connID]
		b.mu.RUnlock()
		if s == nil || s.Room() != d.Message.Room {
			metrics.FanoutDeliveriesTotal.WithLabelValues("gone").Inc()
			continue
		}

		if s.sink.Deliver(ev) {
			metrics.FanoutDeliveriesTotal.WithLabelValues("delivered").Inc()
		} else {
			metrics.FanoutDeliveriesTotal.WithLabelValues("dropped").Inc()
			b.log.Warn().Str("conn_id", connID).Str("room", d.Message.Room).Msg("recipient buffer full, message dropped")
		}
	}
}

// SessionCount returns the number of live sessions.
func (b *Broadcaster) SessionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}
