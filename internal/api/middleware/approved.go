package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

// UserLookup is the slice of the user repository the approval gate needs.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// RequireApproved rejects identities that have not been approved yet. The
// flag is read from storage on every request, so approval takes effect
// without a new token. Must run after Auth.
func RequireApproved(users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := c.Get(KeyUserID).(string)
			if id == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			user, err := users.FindByID(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "unknown identity")
				}
				return err
			}
			if !user.Approved {
				return domain.ErrNotApproved
			}
			return next(c)
		}
	}
}
