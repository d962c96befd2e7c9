package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/luckyhouse/listing-api/internal/core/domain"
)

// SessionResolver loads a live session by id.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*domain.Session, error)
}

// LoadSession attaches the caller's Principal to the request context when a
// valid session cookie is present. It never rejects a request: anonymous
// callers pass through and RequireAuth decides.
func LoadSession(resolver SessionResolver, cookies *SessionCookies, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, err := cookies.SessionID(c)
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					log.Debug().Str("path", c.Path()).Msg("ignoring invalid session cookie")
					cookies.Clear(c)
				}
				return next(c)
			}

			req := c.Request()
			session, err := resolver.Resolve(req.Context(), sid)
			switch {
			case errors.Is(err, domain.ErrSessionNotFound):
				cookies.Clear(c)
				return next(c)
			case err != nil:
				log.Error().Err(err).Str("path", c.Path()).Msg("session lookup failed, treating request as anonymous")
				return next(c)
			}

			ctx := domain.WithPrincipal(req.Context(), domain.PrincipalFromSession(session))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// RequireAuth rejects anonymous requests with domain.ErrUnauthorized.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := domain.PrincipalFrom(c.Request().Context()); !ok {
				return domain.ErrUnauthorized
			}
			return next(c)
		}
	}
}
