package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/service"
)

// AccessCookie is the cookie carrying the access token.
const AccessCookie = "accessToken"

// Authenticator resolves an access token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (model.User, error)
}

// ProtectRoute authenticates the request with the access token from the
// accessToken cookie, or from an "Authorization: Bearer" header when the
// cookie is absent. On success the user, its id and its role are stored in
// the context.
func ProtectRoute(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, err := auth.Authenticate(c.Request().Context(), accessToken(c))
			switch {
			case errors.Is(err, service.ErrUnauthenticated):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized - no access token provided"})
			case errors.Is(err, service.ErrInvalidToken):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized - invalid access token"})
			case err != nil:
				c.Logger().Errorf("auth: resolve user: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
			}

			c.Set(ctxUser, u)
			c.Set(ctxUserID, u.ID)
			c.Set(ctxRole, u.Role)
			return next(c)
		}
	}
}

func accessToken(c echo.Context) string {
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
