package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/model"
)

// RequireRole lets the request through only when ProtectRoute stored one of
// roles in the context; everyone else gets 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ctxRole).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied - admin only"})
			}
			return next(c)
		}
	}
}

// AdminRoute is RequireRole(model.RoleAdmin).
func AdminRoute() echo.MiddlewareFunc {
	return RequireRole(model.RoleAdmin)
}
