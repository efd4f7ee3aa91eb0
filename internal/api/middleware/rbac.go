package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

// RBAC enforces role-based access control.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(KeyRole).(string)
			if _, ok := allowed[domain.Role(role)]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

// Privileged admits superadmins and admins.
func Privileged() echo.MiddlewareFunc {
	return RBAC(domain.RoleSuperAdmin, domain.RoleAdmin)
}
