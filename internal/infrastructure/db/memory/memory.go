// Package memory provides in-process implementations of the repository and
// session ports. They back the "memory" store backend used for local runs
// and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/luckyhouse/listing-api/internal/core/domain"
)

// UserRepository is a mutex-guarded map keyed by username.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	stored := cloneUser(user)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	r.users[stored.Username] = stored
	return cloneUser(stored), nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.Username]
	if !ok {
		return domain.ErrUserNotFound
	}
	stored := cloneUser(user)
	stored.ID = existing.ID
	stored.CreatedAt = existing.CreatedAt
	r.users[user.Username] = stored
	return nil
}

func (r *UserRepository) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, username)
	return nil
}

// List returns users ordered by username.
func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// ListByListingURL returns the users bound to listingURL ordered by username.
func (r *UserRepository) ListByListingURL(ctx context.Context, listingURL string) ([]*domain.User, error) {
	all, _ := r.List(ctx)
	out := []*domain.User{}
	for _, u := range all {
		if u.ListingURL == listingURL {
			out = append(out, u)
		}
	}
	return out, nil
}

// ListingRepository is a mutex-guarded map keyed by listing URL.
type ListingRepository struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{listings: make(map[string]*domain.Listing)}
}

func cloneListing(l *domain.Listing) *domain.Listing {
	c := *l
	c.Photos = append([]string(nil), l.Photos...)
	return &c
}

func (r *ListingRepository) Create(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.listings[listing.URL]; exists {
		return domain.ErrListingExists
	}
	r.listings[listing.URL] = cloneListing(listing)
	return nil
}

func (r *ListingRepository) FindByURL(_ context.Context, url string) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.listings[url]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return cloneListing(l), nil
}

func (r *ListingRepository) Update(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[listing.URL]; !ok {
		return domain.ErrListingNotFound
	}
	r.listings[listing.URL] = cloneListing(listing)
	return nil
}

func (r *ListingRepository) Delete(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[url]; !ok {
		return domain.ErrListingNotFound
	}
	delete(r.listings, url)
	return nil
}

// List returns listings ordered by URL.
func (r *ListingRepository) List(_ context.Context) ([]*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		out = append(out, cloneListing(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out, nil
}

// SessionStore keeps sessions in memory and drops them once expired.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.Session), now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// LoginThrottle counts failures per username in fixed windows.
type LoginThrottle struct {
	mu      sync.Mutex
	entries map[string]throttleEntry
	now     func() time.Time
}

type throttleEntry struct {
	count     int
	expiresAt time.Time
}

func NewLoginThrottle() *LoginThrottle {
	return &LoginThrottle{entries: make(map[string]throttleEntry), now: time.Now}
}

func (t *LoginThrottle) Failures(_ context.Context, username string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current(username).count, nil
}

func (t *LoginThrottle) RecordFailure(_ context.Context, username string, window time.Duration) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.current(username)
	if e.count == 0 {
		e.expiresAt = t.now().Add(window)
	}
	e.count++
	t.entries[username] = e
	return e.count, nil
}

func (t *LoginThrottle) Reset(_ context.Context, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, username)
	return nil
}

// current must be called with t.mu held.
func (t *LoginThrottle) current(username string) throttleEntry {
	e, ok := t.entries[username]
	if !ok || !t.now().Before(e.expiresAt) {
		delete(t.entries, username)
		return throttleEntry{}
	}
	return e
}
