package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamcuriosity/collective/internal/core/ports"
)

type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// Approve handles POST /v1/users/:id/approve.
//
// @Summary      Approve a registered identity
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/approve [post]
func (h *UserHandler) Approve(c echo.Context) error {
	user, err := h.authService.Approve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
