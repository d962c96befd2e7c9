package ports

import (
	"context"

	"github.com/luckyhouse/listing-api/internal/core/domain"
)

// AuthService drives the login/logout state machine.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
	// Resolve returns the live session for id or domain.ErrSessionNotFound.
	Resolve(ctx context.Context, sessionID string) (*domain.Session, error)
}
