package ports

import (
	"context"
	"time"

	"github.com/luckyhouse/listing-api/internal/core/domain"
)

// SessionStore keeps server-side sessions. Get returns
// domain.ErrSessionNotFound for unknown or expired ids.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// LoginThrottle counts failed logins per username inside a sliding window.
type LoginThrottle interface {
	// Failures returns the number of failures recorded in the current window.
	Failures(ctx context.Context, username string) (int, error)
	RecordFailure(ctx context.Context, username string, window time.Duration) (int, error)
	Reset(ctx context.Context, username string) error
}
