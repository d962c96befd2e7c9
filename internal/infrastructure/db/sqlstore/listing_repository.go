package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luckyhouse/listing-api/internal/core/domain"
)

// ListingRepository implements ports.ListingRepository on the listings
// table. Photos are stored as a JSON array.
type ListingRepository struct {
	db *DB
}

func NewListingRepository(db *DB) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = "url, name, address, description, photos, open, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(s rowScanner) (*domain.Listing, error) {
	var l domain.Listing
	var photos string
	if err := s.Scan(&l.URL, &l.Name, &l.Address, &l.Description, &photos, &l.Open, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(photos), &l.Photos); err != nil {
		return nil, fmt.Errorf("decode photos: %w", err)
	}
	if l.Photos == nil {
		l.Photos = []string{}
	}
	return &l, nil
}

func encodePhotos(photos []string) (string, error) {
	if photos == nil {
		photos = []string{}
	}
	b, err := json.Marshal(photos)
	if err != nil {
		return "", fmt.Errorf("encode photos: %w", err)
	}
	return string(b), nil
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	photos, err := encodePhotos(l.Photos)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, r.db.rebind(
		"INSERT INTO listings ("+listingColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"),
		l.URL, l.Name, l.Address, l.Description, photos, l.Open, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrListingExists
		}
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (r *ListingRepository) FindByURL(ctx context.Context, url string) (*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, r.db.rebind("SELECT "+listingColumns+" FROM listings WHERE url = ?"), url)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("query listing: %w", err)
	}
	return l, nil
}

func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	photos, err := encodePhotos(l.Photos)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, r.db.rebind(
		`UPDATE listings SET name = ?, address = ?, description = ?, photos = ?, open = ?, updated_at = ? WHERE url = ?`),
		l.Name, l.Address, l.Description, photos, l.Open, l.UpdatedAt, l.URL,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	return requireAffected(res, domain.ErrListingNotFound)
}

func (r *ListingRepository) Delete(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.db.rebind("DELETE FROM listings WHERE url = ?"), url)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return requireAffected(res, domain.ErrListingNotFound)
}

func (r *ListingRepository) List(ctx context.Context) ([]*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, "SELECT "+listingColumns+" FROM listings ORDER BY url ASC")
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	listings := []*domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}
