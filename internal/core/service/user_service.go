package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/luckyhouse/listing-api/internal/core/domain"
	"github.com/luckyhouse/listing-api/internal/core/ports"
)

const (
	viewerSuffixLen   = 4
	viewerPasswordLen = 12

	// bcrypt rejects passwords longer than this.
	maxPasswordBytes = 72

	alnum       = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	punctuation = "!#$%&*+-=?@^_~"
)

// UserService implements admin account management.
type UserService struct {
	users    ports.UserRepository
	listings ports.ListingRepository
	hasher   ports.PasswordHasher
	log      zerolog.Logger
	now      func() time.Time
}

func NewUserService(users ports.UserRepository, listings ports.ListingRepository, hasher ports.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{users: users, listings: listings, hasher: hasher, log: log, now: time.Now}
}

// Create validates and stores a new account with a hashed password.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.MissingField("username")
	}
	if in.Password == "" {
		return nil, domain.MissingField("password")
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		s.log.Warn().Str("username", username).Str("user_type", in.Role).Msg("rejected invalid user type")
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		FirstName:    in.Profile.FirstName,
		LastName:     in.Profile.LastName,
		Email:        in.Profile.Email,
		Phone:        in.Profile.Phone,
		ListingURL:   in.Profile.ListingURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.log.Warn().Str("username", username).Msg("user already exists")
		}
		return nil, err
	}

	s.log.Info().Str("username", username).Str("role", role.String()).Msg("user created")
	return created, nil
}

// Update applies a partial change to an existing account.
func (s *UserService) Update(ctx context.Context, in ports.UpdateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.MissingField("username")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if in.Role != nil {
		role, err := domain.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	if in.Password != nil && *in.Password != "" {
		if err := checkPasswordLength(*in.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		user.PasswordHash = hash
	}
	setIfPresent(&user.FirstName, in.FirstName)
	setIfPresent(&user.LastName, in.LastName)
	setIfPresent(&user.Email, in.Email)
	setIfPresent(&user.Phone, in.Phone)
	setIfPresent(&user.ListingURL, in.ListingURL)
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Msg("user updated")
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.MissingField("username")
	}
	if err := s.users.Delete(ctx, username); err != nil {
		return err
	}
	s.log.Info().Str("username", username).Msg("user deleted")
	return nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// GenerateViewer creates a viewer account bound to listingURL and returns its
// plaintext credentials. The password is not recoverable afterwards.
func (s *UserService) GenerateViewer(ctx context.Context, listingURL string) (*ports.ViewerCredentials, error) {
	if listingURL == "" {
		return nil, domain.MissingField("url")
	}
	if _, err := s.listings.FindByURL(ctx, listingURL); err != nil {
		return nil, err
	}

	suffix, err := randomString(alnum, viewerSuffixLen)
	if err != nil {
		return nil, fmt.Errorf("generate viewer: %w", err)
	}
	password, err := randomString(alnum+punctuation, viewerPasswordLen)
	if err != nil {
		return nil, fmt.Errorf("generate viewer: %w", err)
	}

	creds := &ports.ViewerCredentials{
		Username:   fmt.Sprintf("viewer_%s_%s", listingURL, suffix),
		Password:   password,
		ListingURL: listingURL,
	}
	if _, err := s.Create(ctx, ports.CreateUserInput{
		Username: creds.Username,
		Password: creds.Password,
		Role:     domain.RoleViewer.String(),
		Profile:  domain.Profile{ListingURL: listingURL},
	}); err != nil {
		return nil, err
	}
	return creds, nil
}

// ListViewers returns the viewer accounts generated for listingURL. Password
// hashes are not loaded.
func (s *UserService) ListViewers(ctx context.Context, listingURL string) ([]*domain.User, error) {
	if listingURL == "" {
		return nil, domain.MissingField("url")
	}
	if _, err := s.listings.FindByURL(ctx, listingURL); err != nil {
		return nil, err
	}

	bound, err := s.users.ListByListingURL(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("list viewers: %w", err)
	}
	viewers := make([]*domain.User, 0, len(bound))
	for _, u := range bound {
		if u.Role == domain.RoleViewer {
			viewers = append(viewers, u)
		}
	}
	return viewers, nil
}

// EnsureAdmin creates an admin account named username unless one already
// exists. It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return false, fmt.Errorf("seed admin: %w", err)
	}

	_, err = s.Create(ctx, ports.CreateUserInput{
		Username: username,
		Password: password,
		Role:     domain.RoleAdmin.String(),
	})
	if errors.Is(err, domain.ErrUserExists) {
		// Another replica seeded it first.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}

func checkPasswordLength(password string) error {
	if len(password) > maxPasswordBytes {
		return domain.NewValidationError("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

func setIfPresent(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func randomString(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[idx.Int64()])
	}
	return b.String(), nil
}
