package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamcuriosity/collective/internal/api/middleware"
	"github.com/teamcuriosity/collective/internal/core/domain"
)

// ctxIdentity rebuilds the caller's identity from the claims the Auth
// middleware stored on the context.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, _ := c.Get(middleware.KeyUserID).(string)
	role, _ := c.Get(middleware.KeyRole).(string)
	if id == "" || role == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	name, _ := c.Get(middleware.KeyName).(string)
	return domain.Identity{ID: id, Name: name, Role: domain.Role(role)}, nil
}
