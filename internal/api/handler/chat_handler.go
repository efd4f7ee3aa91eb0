package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/teamcuriosity/collective/internal/api/ws"
	"github.com/teamcuriosity/collective/internal/core/domain"
	"github.com/teamcuriosity/collective/internal/core/ports"
)

type ChatHandler struct {
	hub      ws.Hub
	history  ports.MessageStore
	upgrader *websocket.Upgrader
	log      zerolog.Logger
}

func NewChatHandler(hub ws.Hub, history ports.MessageStore, upgrader *websocket.Upgrader, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		hub:      hub,
		history:  history,
		upgrader: upgrader,
		log:      log.With().Str("component", "chat_ws").Logger(),
	}
}

// Connect handles GET /v1/chat/ws.
//
// @Summary      Open a live chat connection
// @Description  Upgrades to WebSocket. Frames: join_room, leave_room, send_message. Pass the JWT as ?token= from browsers.
// @Tags         chat
// @Security     BearerAuth
// @Param        token  query  string  false  "JWT when no Authorization header can be sent"
// @Success      101
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/chat/ws [get]
func (h *ChatHandler) Connect(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Warn().Err(err).Str("user_id", caller.ID).Msg("websocket upgrade failed")
		return nil
	}

	ws.Serve(c.Request().Context(), h.hub, conn, caller, h.log)
	return nil
}

// History handles GET /v1/chat/history.
//
// @Summary      Recent messages of a room, oldest first
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        room   query     string  true   "Room name"
// @Param        limit  query     int     false  "At most this many messages (default 50, max 200)"
// @Success      200    {object}  historyResponse
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /v1/chat/history [get]
func (h *ChatHandler) History(c echo.Context) error {
	room := c.QueryParam("room")
	if err := domain.ValidateRoomName(room); err != nil {
		return err
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		limit = n
	}

	msgs, err := h.history.RecentHistory(c.Request().Context(), room, limit)
	if err != nil {
		return err
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}
	return c.JSON(http.StatusOK, historyResponse{Room: room, Messages: msgs})
}
