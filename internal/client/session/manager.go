// Package session владеет жизненным циклом bearer токена клиента:
// хранение, проверка срока действия и удаление.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/internhub/internal/client/storage"
)

// ExpiryThreshold - остаток жизни токена, ниже которого нужен refresh
const ExpiryThreshold = 5 * time.Minute

// Option настраивает Manager
type Option func(*Manager)

// WithClock подменяет источник текущего времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager is the single source of truth for "is there a usable credential right now".
// Токен держится в памяти, хранилище используется для переживания перезапуска.
// Safe for concurrent use.
type Manager struct {
	store  storage.TokenStorage
	logger *slog.Logger
	now    func() time.Time
	token  string
	mu     sync.RWMutex
}

// NewManager создает Manager поверх хранилища токена
func NewManager(store storage.TokenStorage, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init загружает сохраненный токен в слот.
// Отсутствие токена не ошибка.
func (m *Manager) Init(ctx context.Context) error {
	token, err := m.store.GetToken(ctx)
	if err != nil && !errors.Is(err, storage.ErrTokenNotFound) {
		return fmt.Errorf("failed to load token: %w", err)
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	m.logger.Debug("session initialized", "has_token", token != "")
	return nil
}

// Teardown забывает состояние в памяти. Сохраненный токен не трогается,
// для выхода используется RemoveToken.
func (m *Manager) Teardown(ctx context.Context) {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
}

// GetToken возвращает текущий токен, если он есть
func (m *Manager) GetToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// SetToken заменяет текущий токен. Пустое значение игнорируется.
// Слот в памяти обновляется всегда, ошибка сохранения возвращается.
func (m *Manager) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	if err := m.store.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// RemoveToken безусловно удаляет токен из памяти и хранилища
func (m *Manager) RemoveToken(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()

	if err := m.store.DeleteToken(ctx); err != nil && !errors.Is(err, storage.ErrTokenNotFound) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Claims возвращает claims текущего токена.
// ok=false, если токена нет или его не удалось разобрать.
func (m *Manager) Claims() (*Claims, bool) {
	token, ok := m.GetToken()
	if !ok {
		return nil, false
	}

	claims, err := decodeClaims(token)
	if err != nil {
		m.logger.Debug("stored token is malformed", "error", err)
		return nil, false
	}
	return claims, true
}

// IsAuthenticated true только если exp строго в будущем
func (m *Manager) IsAuthenticated() bool {
	claims, ok := m.Claims()
	if !ok {
		return false
	}
	return claims.Expiry().After(m.now())
}

// IsTokenExpiringSoon true, если токена нет или до истечения осталось
// меньше ExpiryThreshold. Неразбираемый токен тоже считается истекающим.
func (m *Manager) IsTokenExpiringSoon() bool {
	token, _ := m.GetToken()
	return m.ExpiringSoon(token)
}

// ExpiringSoon применяет правило IsTokenExpiringSoon к конкретному токену.
// Нужен, чтобы решение принималось по тому же токену, который будет отправлен.
func (m *Manager) ExpiringSoon(token string) bool {
	if token == "" {
		return true
	}
	claims, err := decodeClaims(token)
	if err != nil {
		return true
	}
	return claims.Expiry().Sub(m.now()) < ExpiryThreshold
}
