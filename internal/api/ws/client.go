// Package ws carries chat sessions over WebSocket connections.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/teamcuriosity/collective/internal/chat"
	"github.com/teamcuriosity/collective/internal/core/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 256
)

// Hub is the chat engine a connection talks to.
type Hub interface {
	Connect(identity domain.Identity, sink chat.Sink) *chat.Session
	Handle(ctx context.Context, s *chat.Session, f chat.Frame)
	Disconnect(s *chat.Session)
}

// NewUpgrader returns an upgrader accepting the given origins. With no
// origins every request is accepted. Requests without an Origin header are
// not from browsers and are always accepted.
func NewUpgrader(origins []string) *websocket.Upgrader {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

// Client is one WebSocket connection. It implements chat.Sink.
type Client struct {
	conn *websocket.Conn
	send chan chat.Event
	done chan struct{}
	once sync.Once
	log  zerolog.Logger
}

func newClient(conn *websocket.Conn, log zerolog.Logger) *Client {
	return &Client{
		conn: conn,
		send: make(chan chat.Event, sendBuffer),
		done: make(chan struct{}),
		log:  log,
	}
}

// Deliver queues ev without blocking. It returns false when the buffer is
// full or the connection is closing.
func (c *Client) Deliver(ev chat.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

// Serve runs conn until either side closes it. It blocks; the caller's
// goroutine becomes the read pump.
func Serve(ctx context.Context, hub Hub, conn *websocket.Conn, identity domain.Identity, log zerolog.Logger) {
	c := newClient(conn, log.With().Str("user_id", identity.ID).Logger())
	s := hub.Connect(identity, c)
	c.log = c.log.With().Str("conn_id", s.ID()).Logger()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump()
	}()

	c.readPump(ctx, hub, s)

	hub.Disconnect(s)
	c.close()
	<-writerDone
}

func (c *Client) readPump(ctx context.Context, hub Hub, s *chat.Session) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("websocket closed unexpectedly")
			} else {
				c.log.Debug().Msg("websocket closed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var f chat.Frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.Deliver(chat.Event{
				Type:  chat.EventError,
				Error: &chat.ErrorPayload{Kind: domain.KindValidation, Message: "malformed frame"},
			})
			continue
		}
		hub.Handle(ctx, s, f)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.log.Warn().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Debug().Err(err).Msg("websocket ping failed")
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
