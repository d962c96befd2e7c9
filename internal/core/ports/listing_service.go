package ports

import (
	"context"

	"github.com/luckyhouse/listing-api/internal/core/domain"
)

// CreateListingInput carries a new listing. Photos are raw embedded images.
type CreateListingInput struct {
	URL         string
	Name        string
	Address     string
	Description string
	Photos      []string
	Open        bool
}

// UpdateListingInput replaces the required fields and, when non-nil, the
// optional ones.
type UpdateListingInput struct {
	URL         string
	Name        string
	Address     string
	Description *string
	Photos      []string // nil keeps the stored photos
	Open        *bool
}

// ListingService covers admin listing management and viewer access.
type ListingService interface {
	Create(ctx context.Context, input CreateListingInput) (*domain.Listing, error)
	Update(ctx context.Context, input UpdateListingInput) (*domain.Listing, error)
	Delete(ctx context.Context, url string) error
	List(ctx context.Context) ([]*domain.Listing, error)
	GetPublic(ctx context.Context, token string) (*domain.ListingPreview, error)
	// GetDetails enforces role scoping for principal.
	GetDetails(ctx context.Context, principal domain.Principal, token string) (*domain.Listing, error)
}
