package storage

import "context"

// TokenStorage defines interface for persisting the bearer token on client.
// It is a single slot: saving overwrites, there is never more than one token.
// The layer works with raw values and does not inspect or decode the token.
type TokenStorage interface {
	// SaveToken stores token as-is, replacing the previous one
	SaveToken(ctx context.Context, token string) error

	// GetToken retrieves the stored token
	// Returns ErrTokenNotFound if no token exists
	GetToken(ctx context.Context) (string, error)

	// DeleteToken removes the stored token (logout)
	// Deleting a missing token is not an error
	DeleteToken(ctx context.Context) error
}
