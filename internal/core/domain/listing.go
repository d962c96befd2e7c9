package domain

import (
	"errors"
	"time"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrListingExists   = errors.New("listing url already exists")
)

// Listing is a property advertised to viewers under a URL token.
type Listing struct {
	URL         string    `json:"url" bson:"url"`
	Name        string    `json:"name" bson:"name"`
	Address     string    `json:"address" bson:"address"`
	Description string    `json:"description" bson:"description"`
	Photos      []string  `json:"photos" bson:"photos"`
	Open        bool      `json:"open" bson:"open"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// PreviewPhoto returns the first photo, or nil when the listing has none.
func (l *Listing) PreviewPhoto() *string {
	if len(l.Photos) == 0 {
		return nil
	}
	p := l.Photos[0]
	return &p
}

// ListingPreview is the unauthenticated projection of a listing.
type ListingPreview struct {
	Name         string  `json:"name"`
	PreviewPhoto *string `json:"preview_photo"`
}
