package auth

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

// RequireRole returns middleware that rejects requests whose authenticated
// role is not one of the given roles. Roles are matched exactly: admin does
// not implicitly satisfy doctor-only routes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return apperr.Forbidden(fmt.Sprintf("Required role: %s", strings.Join(roles, " or ")))
		}
	}
}
