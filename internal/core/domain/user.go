package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the closed set of principals the API authorises against.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTenant Role = "tenant"
	RoleViewer Role = "viewer"
)

// roleAliases maps accepted wire spellings to their canonical role.
// "customer" is the legacy name for tenant accounts.
var roleAliases = map[string]Role{
	"admin":    RoleAdmin,
	"tenant":   RoleTenant,
	"customer": RoleTenant,
	"viewer":   RoleViewer,
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidRole        = errors.New("invalid user type")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// ParseRole converts a wire value into a Role. It is the only place role
// strings are validated; everything downstream carries the typed value.
func ParseRole(s string) (Role, error) {
	r, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", ErrInvalidRole
	}
	return r, nil
}

func (r Role) String() string { return string(r) }

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTenant, RoleViewer:
		return true
	}
	return false
}

// User models an account that can log in.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"user_type"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	ListingURL   string    `json:"listing_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile holds the optional descriptive fields of an account.
type Profile struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	ListingURL string
}
