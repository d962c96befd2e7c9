package ports

import (
	"context"

	"github.com/luckyhouse/listing-api/internal/core/domain"
)

// UserRepository is the Credential Store. Implementations must enforce
// username uniqueness and return domain.ErrUserExists / domain.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, username string) error
	List(ctx context.Context) ([]*domain.User, error)
	// ListByListingURL returns the accounts bound to a listing.
	ListByListingURL(ctx context.Context, listingURL string) ([]*domain.User, error)
}
