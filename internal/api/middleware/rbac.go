package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/luckyhouse/listing-api/internal/core/domain"
)

// RequireRole enforces role-based access control. Anonymous callers get
// domain.ErrUnauthorized, authenticated callers outside roles get
// domain.ErrForbidden.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := domain.PrincipalFrom(c.Request().Context())
			if !ok {
				return domain.ErrUnauthorized
			}
			if _, ok := allowed[p.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
