package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/luckyhouse/listing-api/internal/core/domain"
	"github.com/luckyhouse/listing-api/internal/core/ports"
)

func mustCreateUser(t *testing.T, f *fixture, username, password, role string) {
	t.Helper()
	if _, err := f.userService.Create(context.Background(), ports.CreateUserInput{
		Username: username, Password: password, Role: role,
	}); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
}

func TestAuthService_Login_ReturnsRoleAndSession(t *testing.T) {
	f := newFixture(AuthConfig{SessionTTL: time.Hour})
	ctx := context.Background()
	mustCreateUser(t, f, "alice", "pw", "customer")

	session, err := f.auth.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Role != domain.RoleTenant || session.Username != "alice" || session.ID == "" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if d := session.ExpiresAt.Sub(session.CreatedAt); d != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", d)
	}

	got, err := f.auth.Resolve(ctx, session.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("resolved wrong session: %+v", got)
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(AuthConfig{})
	ctx := context.Background()
	mustCreateUser(t, f, "alice", "pw", "tenant")

	_, wrongPassword := f.auth.Login(ctx, "alice", "nope")
	_, missingUser := f.auth.Login(ctx, "mallory", "nope")
	_, empty := f.auth.Login(ctx, "", "")

	for _, err := range []error{wrongPassword, missingUser, empty} {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
	if wrongPassword.Error() != missingUser.Error() {
		t.Fatalf("errors differ: %q vs %q", wrongPassword, missingUser)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	f := newFixture(AuthConfig{MaxLoginAttempts: 2, LoginWindow: time.Minute})
	ctx := context.Background()
	mustCreateUser(t, f, "alice", "pw", "admin")

	for i := 0; i < 2; i++ {
		if _, err := f.auth.Login(ctx, "alice", "bad"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	if _, err := f.auth.Login(ctx, "alice", "pw"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_SuccessResetsThrottle(t *testing.T) {
	f := newFixture(AuthConfig{MaxLoginAttempts: 3, LoginWindow: time.Minute})
	ctx := context.Background()
	mustCreateUser(t, f, "alice", "pw", "admin")

	_, _ = f.auth.Login(ctx, "alice", "bad")
	if _, err := f.auth.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	n, _ := f.throttle.Failures(ctx, "alice")
	if n != 0 {
		t.Fatalf("expected throttle reset, got %d failures", n)
	}
}

func TestAuthService_Resolve_Expired(t *testing.T) {
	f := newFixture(AuthConfig{SessionTTL: time.Hour})
	ctx := context.Background()
	mustCreateUser(t, f, "alice", "pw", "admin")

	session, err := f.auth.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	f.auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := f.auth.Resolve(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAuthService_Resolve_FollowsAccountChanges(t *testing.T) {
	f := newFixture(AuthConfig{})
	ctx := context.Background()
	mustCreateUser(t, f, "tom", "pw", "admin")

	session, err := f.auth.Login(ctx, "tom", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := f.userService.Update(ctx, ports.UpdateUserInput{
		Username: "tom", Role: strPtr("tenant"), ListingURL: strPtr("beach"),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := f.auth.Resolve(ctx, session.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Role != domain.RoleTenant || got.ListingURL != "beach" {
		t.Fatalf("expected refreshed role and listing, got %+v", got)
	}

	if err := f.userService.Delete(ctx, "tom"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.auth.Resolve(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for deleted account, got %v", err)
	}
	if _, err := f.sessions.Get(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected stale session removed, got %v", err)
	}
}

func TestAuthService_Resolve_RecreatedAccount(t *testing.T) {
	f := newFixture(AuthConfig{})
	ctx := context.Background()
	mustCreateUser(t, f, "tom", "pw", "admin")

	session, _ := f.auth.Login(ctx, "tom", "pw")
	_ = f.userService.Delete(ctx, "tom")
	mustCreateUser(t, f, "tom", "other", "tenant")

	if _, err := f.auth.Resolve(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected old session rejected for a new account, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newFixture(AuthConfig{})
	ctx := context.Background()
	mustCreateUser(t, f, "alice", "pw", "admin")

	session, _ := f.auth.Login(ctx, "alice", "pw")
	if err := f.auth.Logout(ctx, session.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := f.auth.Resolve(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}
	if err := f.auth.Logout(ctx, session.ID); err != nil {
		t.Fatalf("second logout should be a no-op: %v", err)
	}
	if err := f.auth.Logout(ctx, ""); err != nil {
		t.Fatalf("empty logout should be a no-op: %v", err)
	}
}
