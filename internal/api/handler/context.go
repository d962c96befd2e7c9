package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/luckyhouse/listing-api/internal/core/domain"
)

// principal returns the identity placed on the request by the session
// middleware. Routes behind RequireAuth always have one; the check guards
// against a handler being mounted without the gate.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := domain.PrincipalFrom(c.Request().Context())
	if !ok {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return p, nil
}
