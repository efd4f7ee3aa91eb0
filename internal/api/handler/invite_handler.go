package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teamcuriosity/collective/internal/core/ports"
)

type InviteHandler struct {
	service ports.InviteService
	now     func() time.Time
}

func NewInviteHandler(service ports.InviteService, now func() time.Time) *InviteHandler {
	if now == nil {
		now = time.Now
	}
	return &InviteHandler{service: service, now: now}
}

// Issue handles POST /v1/invites.
//
// @Summary      Issue an invite token
// @Tags         invites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      issueInviteRequest  true  "Validity window in hours"
// @Success      201   {object}  inviteResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/invites [post]
func (h *InviteHandler) Issue(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req issueInviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	inv, err := h.service.Issue(c.Request().Context(), caller.ID, req.TTLHours)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toInviteResponse(inv, h.now()))
}

// List handles GET /v1/invites.
//
// @Summary      List invites
// @Tags         invites
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   inviteResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/invites [get]
func (h *InviteHandler) List(c echo.Context) error {
	invites, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	now := h.now()
	out := make([]inviteResponse, 0, len(invites))
	for _, inv := range invites {
		out = append(out, toInviteResponse(inv, now))
	}
	return c.JSON(http.StatusOK, out)
}

// Revoke handles DELETE /v1/invites/:token.
//
// @Summary      Revoke an unused invite
// @Tags         invites
// @Security     BearerAuth
// @Param        token  path  string  true  "Invite token"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/invites/{token} [delete]
func (h *InviteHandler) Revoke(c echo.Context) error {
	if err := h.service.Revoke(c.Request().Context(), c.Param("token")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
