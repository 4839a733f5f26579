// Package memory хранит токен в памяти процесса.
// Используется для --ephemeral запусков, когда сессия не должна переживать процесс.
package memory

import (
	"context"
	"sync"

	"github.com/iudanet/internhub/internal/client/storage"
)

// Storage is an in-memory token and metadata storage
type Storage struct {
	token string
	salt  []byte
	mu    sync.RWMutex
	has   bool
}

var (
	_ storage.TokenStorage    = (*Storage)(nil)
	_ storage.MetadataStorage = (*Storage)(nil)
)

// New creates an empty in-memory storage
func New() *Storage {
	return &Storage{}
}

func (s *Storage) SaveToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.has = true
	return nil
}

func (s *Storage) GetToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.has {
		return "", storage.ErrTokenNotFound
	}
	return s.token, nil
}

func (s *Storage) DeleteToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.has = false
	return nil
}

func (s *Storage) SaveSalt(ctx context.Context, salt []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.salt = append([]byte(nil), salt...)
	return nil
}

func (s *Storage) GetSalt(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.salt == nil {
		return nil, storage.ErrSaltNotFound
	}
	return append([]byte(nil), s.salt...), nil
}
