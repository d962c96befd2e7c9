package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/luckyhouse/listing-api/internal/core/domain"
	"github.com/luckyhouse/listing-api/internal/core/ports"
	"github.com/luckyhouse/listing-api/internal/pkg/metrics"
)

// SessionCookieWriter sets and clears the browser's session cookie.
type SessionCookieWriter interface {
	Set(c echo.Context, session *domain.Session) error
	Clear(c echo.Context)
}

type AuthHandler struct {
	authService ports.AuthService
	cookies     SessionCookieWriter
}

func NewAuthHandler(authService ports.AuthService, cookies SessionCookieWriter) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// Login authenticates a user and opens a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      429   {object}  messageResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}

	session, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		case errors.Is(err, domain.ErrTooManyAttempts):
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		}
		return err
	}

	if err := h.cookies.Set(c, session); err != nil {
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{Message: "Login successful", UserType: session.Role.String()})
}

// Logout destroys the caller's session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), p.SessionID); err != nil {
		return err
	}
	h.cookies.Clear(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
}

// CurrentUser reports the caller's role, or "guest" without a session.
//
// @Summary      Current user type
// @Tags         auth
// @Produce      json
// @Success      200  {object}  userTypeResponse
// @Router       /auth/user [get]
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	p, ok := domain.PrincipalFrom(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusOK, userTypeResponse{UserType: "guest"})
	}
	return c.JSON(http.StatusOK, userTypeResponse{UserType: p.Role.String()})
}
