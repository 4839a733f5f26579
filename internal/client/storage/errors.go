package storage

import "errors"

// Common client storage errors
var (
	// ErrTokenNotFound indicates that no token is stored
	ErrTokenNotFound = errors.New("token not found")

	// ErrSaltNotFound indicates that key derivation salt was not saved yet
	ErrSaltNotFound = errors.New("salt not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
