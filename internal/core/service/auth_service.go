package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/luckyhouse/listing-api/internal/core/domain"
	"github.com/luckyhouse/listing-api/internal/core/ports"
)

const sessionIDBytes = 32

// AuthConfig tunes session lifetime and login throttling.
type AuthConfig struct {
	SessionTTL       time.Duration
	MaxLoginAttempts int
	LoginWindow      time.Duration
}

// AuthService implements login, logout and session resolution.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	hasher   ports.PasswordHasher
	throttle ports.LoginThrottle
	cfg      AuthConfig
	log      zerolog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService wires the auth use case. throttle may be nil to disable
// login rate limiting.
func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	hasher ports.PasswordHasher,
	throttle ports.LoginThrottle,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.LoginWindow <= 0 {
		cfg.LoginWindow = 15 * time.Minute
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		throttle: throttle,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Login verifies credentials and opens a session. Unknown users and wrong
// passwords both surface as domain.ErrInvalidCredentials; the difference is
// only logged.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.checkThrottle(ctx, username); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		// Burn a comparison so a missing user costs the same as a bad password.
		s.hasher.Verify(s.fallbackHash(), password)
		s.log.Warn().Str("username", username).Str("reason", "user_not_found").Msg("login rejected")
		s.recordFailure(ctx, username)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		s.log.Warn().Str("username", username).Str("reason", "bad_password").Msg("login rejected")
		s.recordFailure(ctx, username)
		return nil, domain.ErrInvalidCredentials
	}

	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	now := s.now().UTC()
	session := &domain.Session{
		ID:         id,
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
		ListingURL: user.ListingURL,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("login: save session: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login throttle")
		}
	}

	s.log.Info().Str("username", user.Username).Str("role", user.Role.String()).Msg("login succeeded")
	return session, nil
}

// Logout destroys the session. Unknown ids are not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Resolve loads a live session and refreshes its role and listing binding
// from the account. Sessions that have expired, or whose account was deleted
// or recreated, are dropped.
func (s *AuthService) Resolve(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}

	user, err := s.users.FindByUsername(ctx, session.Username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		s.dropSession(ctx, session, "account_deleted")
		return nil, domain.ErrSessionNotFound
	case err != nil:
		return nil, fmt.Errorf("resolve session: %w", err)
	case session.UserID != "" && user.ID != session.UserID:
		s.dropSession(ctx, session, "account_replaced")
		return nil, domain.ErrSessionNotFound
	}

	session.Role = user.Role
	session.ListingURL = user.ListingURL
	return session, nil
}

func (s *AuthService) dropSession(ctx context.Context, session *domain.Session, reason string) {
	if err := s.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.log.Warn().Err(err).Str("username", session.Username).Msg("failed to drop stale session")
	}
	s.log.Info().Str("username", session.Username).Str("reason", reason).Msg("session revoked")
}

func (s *AuthService) checkThrottle(ctx context.Context, username string) error {
	if s.throttle == nil || s.cfg.MaxLoginAttempts <= 0 {
		return nil
	}
	n, err := s.throttle.Failures(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("login throttle check failed, allowing attempt")
		return nil
	}
	if n >= s.cfg.MaxLoginAttempts {
		s.log.Warn().Str("username", username).Int("failures", n).Msg("login throttled")
		return domain.ErrTooManyAttempts
	}
	return nil
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if s.throttle == nil || s.cfg.MaxLoginAttempts <= 0 {
		return
	}
	if _, err := s.throttle.RecordFailure(ctx, username, s.cfg.LoginWindow); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
	}
}

func (s *AuthService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			s.log.Error().Err(err).Msg("failed to build fallback hash")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
