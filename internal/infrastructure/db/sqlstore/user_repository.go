package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/luckyhouse/listing-api/internal/core/domain"
)

// UserRepository implements ports.UserRepository on the users table.
type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, username, password_hash, user_type, first_name, last_name, email, phone, listing_url, created_at, updated_at"

// Create inserts a new account. The ID is generated if empty.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	created := *user
	if created.ID == "" {
		created.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, r.db.rebind(
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		created.ID, created.Username, created.PasswordHash, created.Role.String(),
		created.FirstName, created.LastName, created.Email, created.Phone, created.ListingURL,
		created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &created, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, r.db.rebind("SELECT "+userColumns+" FROM users WHERE username = ?"), username)

	var u domain.User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role,
		&u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.ListingURL,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.Role = parseStoredRole(role)
	return &u, nil
}

// Update writes every mutable column of the account matching user.Username.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.db.rebind(
		`UPDATE users SET password_hash = ?, user_type = ?, first_name = ?, last_name = ?, email = ?, phone = ?, listing_url = ?, updated_at = ? WHERE username = ?`),
		user.PasswordHash, user.Role.String(), user.FirstName, user.LastName,
		user.Email, user.Phone, user.ListingURL, user.UpdatedAt, user.Username,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(res, domain.ErrUserNotFound)
}

func (r *UserRepository) Delete(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.db.rebind("DELETE FROM users WHERE username = ?"), username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res, domain.ErrUserNotFound)
}

// List returns all accounts ordered by username, without password hashes.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	return r.list(ctx, "")
}

// ListByListingURL returns the accounts bound to listingURL, ordered by
// username and without password hashes.
func (r *UserRepository) ListByListingURL(ctx context.Context, listingURL string) ([]*domain.User, error) {
	return r.list(ctx, "WHERE listing_url = ?", listingURL)
}

func (r *UserRepository) list(ctx context.Context, where string, args ...any) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := "SELECT id, username, user_type, first_name, last_name, email, phone, listing_url, created_at, updated_at FROM users "
	if where != "" {
		query += where + " "
	}
	query += "ORDER BY username ASC"

	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		var u domain.User
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &role, &u.FirstName, &u.LastName,
			&u.Email, &u.Phone, &u.ListingURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Role = parseStoredRole(role)
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func parseStoredRole(s string) domain.Role {
	role, err := domain.ParseRole(s)
	if err != nil {
		return domain.Role(s)
	}
	return role
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
