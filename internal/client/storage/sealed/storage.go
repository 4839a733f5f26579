// Package sealed шифрует токен перед сохранением в нижележащее хранилище.
package sealed

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/internhub/internal/client/storage"
	"github.com/iudanet/internhub/internal/crypto"
)

// Storage decorates storage.TokenStorage with AES-GCM sealing
type Storage struct {
	next   storage.TokenStorage
	sealer *crypto.Sealer
}

var _ storage.TokenStorage = (*Storage)(nil)

// New wraps next so that tokens are stored sealed by key
func New(next storage.TokenStorage, key []byte) (*Storage, error) {
	sealer, err := crypto.NewSealer(key)
	if err != nil {
		return nil, err
	}
	return &Storage{next: next, sealer: sealer}, nil
}

// Open derives the key from passphrase and wraps next.
// Соль создается при первом запуске и хранится в metadata.
func Open(ctx context.Context, next storage.TokenStorage, meta storage.MetadataStorage, passphrase string) (*Storage, error) {
	salt, err := meta.GetSalt(ctx)
	if errors.Is(err, storage.ErrSaltNotFound) {
		salt, err = crypto.GenerateSalt()
		if err != nil {
			return nil, err
		}
		if err := meta.SaveSalt(ctx, salt); err != nil {
			return nil, fmt.Errorf("failed to save salt: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get salt: %w", err)
	}

	key, err := crypto.DeriveKey(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return New(next, key)
}

func (s *Storage) SaveToken(ctx context.Context, token string) error {
	sealed, err := s.sealer.Seal(token)
	if err != nil {
		return fmt.Errorf("failed to seal token: %w", err)
	}
	return s.next.SaveToken(ctx, sealed)
}

// GetToken returns the opened token.
// Токен, который не удалось открыть (другой passphrase), считается отсутствующим.
func (s *Storage) GetToken(ctx context.Context) (string, error) {
	sealed, err := s.next.GetToken(ctx)
	if err != nil {
		return "", err
	}

	token, err := s.sealer.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrTokenNotFound, err)
	}
	return token, nil
}

func (s *Storage) DeleteToken(ctx context.Context) error {
	return s.next.DeleteToken(ctx)
}
