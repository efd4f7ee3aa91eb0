package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamcuriosity/collective/internal/core/domain"
	"github.com/teamcuriosity/collective/internal/core/ports"
)

type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// Send handles POST /v1/notifications.
//
// @Summary      Send a notification
// @Description  recipient is "all", "admin" or a user id; empty means "admin". Members always reach the admin group.
// @Description  A privileged sender addressing a user id that does not exist gets 404 and nothing is stored.
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sendNotificationRequest  true  "Notification"
// @Success      201   {object}  domain.Notification
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/notifications [post]
func (h *NotificationHandler) Send(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req sendNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	n, err := h.service.Send(c.Request().Context(), caller, req.Recipient, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}

// List handles GET /v1/notifications.
//
// @Summary      Inbox of the caller, newest first
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  inboxResponse
// @Router       /v1/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	items, err := h.service.Inbox(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*domain.Notification{}
	}

	unread := 0
	for _, n := range items {
		if !n.IsRead {
			unread++
		}
	}
	return c.JSON(http.StatusOK, inboxResponse{Items: items, Unread: unread})
}

// MarkRead handles POST /v1/notifications/:id/read.
//
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification id"
// @Success      200  {object}  domain.Notification
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	n, err := h.service.MarkRead(c.Request().Context(), c.Param("id"), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}
