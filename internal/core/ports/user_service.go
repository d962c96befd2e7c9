package ports

import (
	"context"

	"github.com/luckyhouse/listing-api/internal/core/domain"
)

// CreateUserInput carries the fields accepted by the admin create endpoint.
// Role is the raw wire value; the service parses it.
type CreateUserInput struct {
	Username string
	Password string
	Role     string
	Profile  domain.Profile
}

// UpdateUserInput is a partial update: nil fields are left untouched.
type UpdateUserInput struct {
	Username   string
	Password   *string
	Role       *string
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      *string
	ListingURL *string
}

// ViewerCredentials is returned once when a viewer account is generated.
type ViewerCredentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	ListingURL string `json:"listing_url"`
}

// UserService is the admin credential management use case.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, username string) error
	List(ctx context.Context) ([]*domain.User, error)
	GenerateViewer(ctx context.Context, listingURL string) (*ViewerCredentials, error)
	// ListViewers returns the viewer accounts bound to an existing listing.
	ListViewers(ctx context.Context, listingURL string) ([]*domain.User, error)
}
