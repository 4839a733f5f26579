package storage

import "context"

// MetadataStorage defines interface for storing client metadata
type MetadataStorage interface {
	// SaveSalt saves the salt used to derive the at-rest encryption key
	SaveSalt(ctx context.Context, salt []byte) error

	// GetSalt retrieves the saved salt
	// Returns ErrSaltNotFound if salt was never saved
	GetSalt(ctx context.Context) ([]byte, error)
}
