package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/internhub/internal/client/storage"
)

// tokenKey - фиксированный ключ единственного слота с токеном
var tokenKey = []byte("token")

// SaveToken stores the bearer token, overwriting the previous one
func (s *Storage) SaveToken(ctx context.Context, token string) error {
	return s.update(bucketAuth, func(b *bbolt.Bucket) error {
		if err := b.Put(tokenKey, []byte(token)); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
		return nil
	})
}

// GetToken retrieves the stored bearer token
func (s *Storage) GetToken(ctx context.Context) (string, error) {
	var token string

	err := s.view(bucketAuth, func(b *bbolt.Bucket) error {
		data := b.Get(tokenKey)
		if data == nil {
			return storage.ErrTokenNotFound
		}
		// bbolt value живет только внутри транзакции, копируем
		token = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

// DeleteToken removes the stored token
func (s *Storage) DeleteToken(ctx context.Context) error {
	return s.update(bucketAuth, func(b *bbolt.Bucket) error {
		if err := b.Delete(tokenKey); err != nil {
			return fmt.Errorf("failed to delete token: %w", err)
		}
		return nil
	})
}
