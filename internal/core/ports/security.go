package ports

import "context"

// PasswordHasher produces and verifies salted one-way password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// ImageNormalizer shrinks embedded photos to the configured byte budget.
// It never fails: undecodable input is returned unchanged.
type ImageNormalizer interface {
	Normalize(ctx context.Context, photo string) string
	NormalizeAll(ctx context.Context, photos []string) []string
}
