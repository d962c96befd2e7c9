package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/luckyhouse/listing-api/internal/infrastructure/db/memory"
	"github.com/luckyhouse/listing-api/internal/infrastructure/security"
)

var nop = zerolog.Nop()

func fastHasher() *security.BcryptHasher {
	return security.NewBcryptHasher(bcrypt.MinCost)
}

// prefixNormalizer marks photos instead of re-encoding them.
type prefixNormalizer struct{}

func (prefixNormalizer) Normalize(_ context.Context, p string) string {
	if strings.HasPrefix(p, "n:") {
		return p
	}
	return "n:" + p
}

func (n prefixNormalizer) NormalizeAll(ctx context.Context, photos []string) []string {
	if photos == nil {
		return nil
	}
	out := make([]string, len(photos))
	for i, p := range photos {
		out[i] = n.Normalize(ctx, p)
	}
	return out
}

type fixture struct {
	users    *memory.UserRepository
	listings *memory.ListingRepository
	sessions *memory.SessionStore
	throttle *memory.LoginThrottle
	hasher   *security.BcryptHasher

	auth        *AuthService
	userService *UserService
	listing     *ListingService
}

func newFixture(cfg AuthConfig) *fixture {
	f := &fixture{
		users:    memory.NewUserRepository(),
		listings: memory.NewListingRepository(),
		sessions: memory.NewSessionStore(),
		throttle: memory.NewLoginThrottle(),
		hasher:   fastHasher(),
	}
	f.auth = NewAuthService(f.users, f.sessions, f.hasher, f.throttle, cfg, nop)
	f.userService = NewUserService(f.users, f.listings, f.hasher, nop)
	f.listing = NewListingService(f.listings, prefixNormalizer{}, nop)
	return f
}
