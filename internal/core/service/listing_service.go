package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/luckyhouse/listing-api/internal/core/domain"
	"github.com/luckyhouse/listing-api/internal/core/ports"
	"github.com/luckyhouse/listing-api/internal/pkg/metrics"
)

// ListingService implements listing management and role-scoped reads.
type ListingService struct {
	repo       ports.ListingRepository
	normalizer ports.ImageNormalizer
	log        zerolog.Logger
	now        func() time.Time
}

func NewListingService(repo ports.ListingRepository, normalizer ports.ImageNormalizer, log zerolog.Logger) *ListingService {
	return &ListingService{repo: repo, normalizer: normalizer, log: log, now: time.Now}
}

// Create stores a new listing after normalising its photos.
func (s *ListingService) Create(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error) {
	if err := requireListingFields(in.URL, in.Name, in.Address); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	listing := &domain.Listing{
		URL:         strings.TrimSpace(in.URL),
		Name:        in.Name,
		Address:     in.Address,
		Description: in.Description,
		Photos:      s.normalizer.NormalizeAll(ctx, in.Photos),
		Open:        in.Open,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if listing.Photos == nil {
		listing.Photos = []string{}
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		if errors.Is(err, domain.ErrListingExists) {
			s.log.Warn().Str("url", listing.URL).Msg("listing url already exists")
		}
		return nil, err
	}

	metrics.ListingMutationsTotal.WithLabelValues("create").Inc()
	s.log.Info().Str("url", listing.URL).Int("photos", len(listing.Photos)).Msg("listing created")
	return listing, nil
}

// Update replaces the listing's required fields and any optional field that
// was supplied.
func (s *ListingService) Update(ctx context.Context, in ports.UpdateListingInput) (*domain.Listing, error) {
	if err := requireListingFields(in.URL, in.Name, in.Address); err != nil {
		return nil, err
	}

	listing, err := s.repo.FindByURL(ctx, strings.TrimSpace(in.URL))
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			s.log.Warn().Str("url", in.URL).Msg("listing not found for update")
		}
		return nil, err
	}

	listing.Name = in.Name
	listing.Address = in.Address
	if in.Description != nil {
		listing.Description = *in.Description
	}
	if in.Photos != nil {
		listing.Photos = s.normalizer.NormalizeAll(ctx, in.Photos)
	}
	if in.Open != nil {
		listing.Open = *in.Open
	}
	listing.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, err
	}

	metrics.ListingMutationsTotal.WithLabelValues("update").Inc()
	s.log.Info().Str("url", listing.URL).Msg("listing updated")
	return listing, nil
}

func (s *ListingService) Delete(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return domain.NewValidationError("Missing listing URL")
	}
	if err := s.repo.Delete(ctx, url); err != nil {
		return err
	}
	metrics.ListingMutationsTotal.WithLabelValues("delete").Inc()
	s.log.Info().Str("url", url).Msg("listing deleted")
	return nil
}

func (s *ListingService) List(ctx context.Context) ([]*domain.Listing, error) {
	return s.repo.List(ctx)
}

// GetPublic returns the unauthenticated preview of a listing.
func (s *ListingService) GetPublic(ctx context.Context, token string) (*domain.ListingPreview, error) {
	listing, err := s.repo.FindByURL(ctx, token)
	if err != nil {
		return nil, err
	}
	return &domain.ListingPreview{Name: listing.Name, PreviewPhoto: listing.PreviewPhoto()}, nil
}

// GetDetails returns the full listing. Admins may read any listing, viewers
// only the one bound to their account; every other role is forbidden.
func (s *ListingService) GetDetails(ctx context.Context, p domain.Principal, token string) (*domain.Listing, error) {
	switch p.Role {
	case domain.RoleAdmin, domain.RoleViewer:
	default:
		s.log.Warn().Str("username", p.Username).Str("role", p.Role.String()).Msg("role may not view listing details")
		return nil, domain.ErrForbidden
	}

	if p.Role == domain.RoleViewer && p.ListingURL != token {
		s.log.Warn().Str("username", p.Username).Str("url", token).Msg("viewer denied access to listing")
		return nil, domain.ErrForbidden
	}

	return s.repo.FindByURL(ctx, token)
}

func requireListingFields(url, name, address string) error {
	switch {
	case strings.TrimSpace(url) == "":
		return domain.MissingField("url")
	case strings.TrimSpace(name) == "":
		return domain.MissingField("name")
	case strings.TrimSpace(address) == "":
		return domain.MissingField("address")
	}
	return nil
}
