package handler

import "time"

// messageResponse is the envelope for both success and error responses.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message  string `json:"message"`
	UserType string `json:"user_type"`
}

type userTypeResponse struct {
	UserType string `json:"user_type"`
}

// --- Users ---

type createUserRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	UserType   string `json:"user_type"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"       validate:"omitempty,email"`
	Phone      string `json:"phone"`
	ListingURL string `json:"listing_url"`
}

// updateUserRequest uses pointers so absent fields are left untouched.
type updateUserRequest struct {
	Username   string  `json:"username"    validate:"required"`
	Password   *string `json:"password"`
	UserType   *string `json:"user_type"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email"       validate:"omitempty,email"`
	Phone      *string `json:"phone"`
	ListingURL *string `json:"listing_url"`
}

type deleteUserRequest struct {
	Username string `json:"username" validate:"required"`
}

type userResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	UserType   string    `json:"user_type"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	ListingURL string    `json:"listing_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type viewerResponse struct {
	Message    string `json:"message"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	ListingURL string `json:"listing_url"`
}

// --- Listings ---

// Listings are keyed by url; older clients send the same token as id.

type createListingRequest struct {
	URL         string   `json:"url"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Photos      []string `json:"photos"`
	Open        bool     `json:"open"`
}

type updateListingRequest struct {
	URL         string   `json:"url"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Description *string  `json:"description"`
	Photos      []string `json:"photos"`
	Open        *bool    `json:"open"`
}

type deleteListingRequest struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

type listingResponse struct {
	URL         string    `json:"url"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Photos      []string  `json:"photos"`
	Open        bool      `json:"open"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type listingPreviewResponse struct {
	Name         string  `json:"name"`
	PreviewPhoto *string `json:"preview_photo"`
}
