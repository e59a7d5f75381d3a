package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/middleware"
	"github.com/iliyamo/storefront/internal/service"
	"github.com/iliyamo/storefront/internal/utils"
)

// AuthFlows is implemented by service.AuthService.
type AuthFlows interface {
	Signup(ctx context.Context, name, email, password string) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	Logout(ctx context.Context, refreshToken string)
	Refresh(ctx context.Context, refreshToken string) (utils.SignedToken, error)
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	auth    AuthFlows
	cookies CookieConfig
}

func NewAuthHandler(auth AuthFlows, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup: create a customer, set both cookies, return the user.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	sess, err := h.auth.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	h.setSession(c, sess.Tokens)
	return c.JSON(http.StatusCreated, viewOf(sess.User))
}

// Login: verify credentials, set both cookies, return the user.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	sess, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	h.setSession(c, sess.Tokens)
	return c.JSON(http.StatusOK, viewOf(sess.User))
}

// Logout always succeeds; revocation is best-effort.
func (h *AuthHandler) Logout(c echo.Context) error {
	if ck, err := c.Cookie(RefreshCookie); err == nil {
		h.auth.Logout(c.Request().Context(), ck.Value)
	}
	h.cookies.clear(c, AccessCookie)
	h.cookies.clear(c, RefreshCookie)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out successfully"})
}

// RefreshToken issues a new access cookie from the refresh cookie.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	raw := ""
	if ck, err := c.Cookie(RefreshCookie); err == nil {
		raw = ck.Value
	}
	access, err := h.auth.Refresh(c.Request().Context(), raw)
	if err != nil {
		return fail(c, err)
	}
	h.cookies.set(c, AccessCookie, access.Token, h.cookies.AccessTTL)
	return c.JSON(http.StatusOK, echo.Map{"message": "token refreshed successfully"})
}

// Profile echoes the user loaded by ProtectRoute.
func (h *AuthHandler) Profile(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, service.ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, viewOf(u))
}

func (h *AuthHandler) setSession(c echo.Context, pair service.TokenPair) {
	h.cookies.set(c, AccessCookie, pair.Access.Token, h.cookies.AccessTTL)
	h.cookies.set(c, RefreshCookie, pair.Refresh.Token, h.cookies.RefreshTTL)
}
