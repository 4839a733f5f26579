// Package auth держит контекст аутентифицированного пользователя:
// login/register, проверку сохраненной сессии при старте и logout.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/iudanet/internhub/internal/client/session"
	"github.com/iudanet/internhub/internal/validation"
	"github.com/iudanet/internhub/pkg/api"
)

// ErrNotAuthenticated - нет пригодного токена
var ErrNotAuthenticated = errors.New("not authenticated")

// Gateway - вызовы backend, нужные сервису
type Gateway interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Profile(ctx context.Context) (*api.ProfileResponse, error)
}

// Session - операции менеджера сессии, нужные сервису
type Session interface {
	GetToken() (string, bool)
	SetToken(ctx context.Context, token string) error
	RemoveToken(ctx context.Context) error
	IsAuthenticated() bool
	Claims() (*session.Claims, bool)
}

// Profile - claims токена вместе с профилем из backend
type Profile struct {
	Claims session.Claims
	User   api.User
}

// RegisterInput содержит данные формы регистрации
type RegisterInput struct {
	FullName     string
	Email        string
	Password     string
	Phone        string
	ReferralCode string
}

// Service предоставляет функции авторизации
type Service struct {
	gateway Gateway
	session Session
	logger  *slog.Logger
	profile *Profile
	mu      sync.Mutex
}

// NewService создает новый сервис авторизации
func NewService(gateway Gateway, sess Session, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gateway: gateway,
		session: sess,
		logger:  logger,
	}
}

// Login выполняет аутентификацию и сохраняет токен
func (s *Service) Login(ctx context.Context, email, password string) (*Profile, error) {
	email = strings.TrimSpace(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	s.dropUnusableToken(ctx)

	resp, err := s.gateway.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return s.establish(ctx, resp)
}

// Register регистрирует студента и сразу открывает сессию
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Profile, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)

	if err := validation.ValidateFullName(in.FullName); err != nil {
		return nil, fmt.Errorf("invalid full name: %w", err)
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	s.dropUnusableToken(ctx)

	resp, err := s.gateway.Register(ctx, api.RegisterRequest{
		FullName:     in.FullName,
		Email:        in.Email,
		Password:     in.Password,
		Phone:        strings.TrimSpace(in.Phone),
		ReferralCode: strings.TrimSpace(in.ReferralCode),
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return s.establish(ctx, resp)
}

// establish сохраняет токен из ответа и строит профиль
func (s *Service) establish(ctx context.Context, resp *api.AuthResponse) (*Profile, error) {
	if resp.Token == "" {
		return nil, fmt.Errorf("server returned no token")
	}
	if err := s.session.SetToken(ctx, resp.Token); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	profile := &Profile{User: resp.User}
	if claims, ok := s.session.Claims(); ok {
		profile.Claims = *claims
	} else {
		s.logger.Warn("issued token has unreadable claims")
	}

	s.setProfile(profile)
	s.logger.Info("session established", "user_id", resp.User.ID, "role", resp.User.Role)
	return profile, nil
}

// Validate проверяет сохраненную сессию при старте.
// Непригодный токен удаляется, для пригодного профиль загружается заново.
func (s *Service) Validate(ctx context.Context) (*Profile, error) {
	if !s.session.IsAuthenticated() {
		s.setProfile(nil)
		s.dropUnusableToken(ctx)
		return nil, ErrNotAuthenticated
	}

	resp, err := s.gateway.Profile(ctx)
	if err != nil {
		s.setProfile(nil)
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	profile := &Profile{User: resp.User}
	if claims, ok := s.session.Claims(); ok {
		profile.Claims = *claims
	}
	s.setProfile(profile)
	return profile, nil
}

// Current возвращает профиль текущей сессии.
// Если токен уже удален (например после 401), профиль тоже сбрасывается.
func (s *Service) Current() (*Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.session.GetToken(); !ok {
		s.profile = nil
	}
	return s.profile, s.profile != nil
}

// Logout удаляет локальную сессию
func (s *Service) Logout(ctx context.Context) error {
	s.setProfile(nil)
	if err := s.session.RemoveToken(ctx); err != nil {
		return fmt.Errorf("failed to delete local session: %w", err)
	}
	return nil
}

// dropUnusableToken удаляет истекший или неразборчивый токен, чтобы
// gateway не пытался обновить его перед login/register
func (s *Service) dropUnusableToken(ctx context.Context) {
	if s.session.IsAuthenticated() {
		return
	}
	if _, ok := s.session.GetToken(); !ok {
		return
	}
	if err := s.session.RemoveToken(ctx); err != nil {
		s.logger.Warn("failed to remove unusable token", "error", err)
	}
}

func (s *Service) setProfile(p *Profile) {
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
}
