package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/internhub/internal/client/storage"
)

const (
	keySalt = "token_salt"
)

// SaveSalt saves the salt of the at-rest encryption key
func (s *Storage) SaveSalt(ctx context.Context, salt []byte) error {
	return s.update(bucketMetadata, func(b *bbolt.Bucket) error {
		if err := b.Put([]byte(keySalt), salt); err != nil {
			return fmt.Errorf("failed to save salt: %w", err)
		}
		return nil
	})
}

// GetSalt retrieves the salt of the at-rest encryption key
func (s *Storage) GetSalt(ctx context.Context) ([]byte, error) {
	var salt []byte

	err := s.view(bucketMetadata, func(b *bbolt.Bucket) error {
		data := b.Get([]byte(keySalt))
		if data == nil {
			return storage.ErrSaltNotFound
		}
		salt = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return salt, nil
}
