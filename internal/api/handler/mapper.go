package handler

import "github.com/luckyhouse/listing-api/internal/core/domain"

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Username:   u.Username,
		UserType:   u.Role.String(),
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Phone:      u.Phone,
		ListingURL: u.ListingURL,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func toListingResponse(l *domain.Listing) listingResponse {
	photos := l.Photos
	if photos == nil {
		photos = []string{}
	}
	return listingResponse{
		URL:         l.URL,
		Name:        l.Name,
		Address:     l.Address,
		Description: l.Description,
		Photos:      photos,
		Open:        l.Open,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// listingKey prefers url and falls back to the legacy id field.
func listingKey(url, id string) string {
	if url != "" {
		return url
	}
	return id
}
