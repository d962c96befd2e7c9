package ports

import (
	"context"

	"github.com/luckyhouse/listing-api/internal/core/domain"
)

// ListingRepository persists listings keyed by their URL token.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	FindByURL(ctx context.Context, url string) (*domain.Listing, error)
	Update(ctx context.Context, listing *domain.Listing) error
	Delete(ctx context.Context, url string) error
	List(ctx context.Context) ([]*domain.Listing, error)
}
