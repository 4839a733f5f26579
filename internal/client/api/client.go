// Package api реализует HTTP клиент к backend маркетплейса стажировок.
// Каждый запрос проходит через проверку сессии: токен прикрепляется,
// при скором истечении обновляется, а 401 от сервера завершает сессию.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/iudanet/internhub/pkg/api"
)

const (
	// DefaultTimeout - общий таймаут одного запроса
	DefaultTimeout = 30 * time.Second

	// LoginRoute - куда отправляется пользователь после завершения сессии
	LoginRoute = "/login"

	maxRedirects = 10
)

// TokenSession - то, что клиенту нужно от менеджера сессии
type TokenSession interface {
	GetToken() (string, bool)
	SetToken(ctx context.Context, token string) error
	RemoveToken(ctx context.Context) error
	ExpiringSoon(token string) bool
}

// Redirector уводит пользователя на маршрут логина.
// В терминальном клиенте это сообщение с инструкцией.
type Redirector interface {
	Redirect(ctx context.Context, route string)
}

// RedirectFunc адаптирует функцию к Redirector
type RedirectFunc func(ctx context.Context, route string)

func (f RedirectFunc) Redirect(ctx context.Context, route string) {
	f(ctx, route)
}

// Option настраивает Client
type Option func(*Client)

// WithTimeout задает общий таймаут запроса
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRedirector задает реакцию на завершение сессии
func WithRedirector(r Redirector) Option {
	return func(c *Client) {
		c.redirector = r
	}
}

// WithLogger задает логгер
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	session    TokenSession
	redirector Redirector
	logger     *slog.Logger
	refresh    singleflight.Group
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string, session TokenSession, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		session: session,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		redirector: RedirectFunc(func(context.Context, string) {}),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest выполняет запрос к API с авторизацией из сессии
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	token, err := c.authorize(ctx)
	if err != nil {
		return err
	}

	status, respBody, err := c.send(ctx, method, path, body, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		c.endSession(ctx, "server rejected credentials", "path", path)
	}

	if status < 200 || status >= 300 {
		return decodeError(status, respBody)
	}

	// Декодируем успешный ответ
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// authorize возвращает токен, который нужно прикрепить к запросу.
// Пустая строка без ошибки - запрос уходит без авторизации.
func (c *Client) authorize(ctx context.Context) (string, error) {
	token, ok := c.session.GetToken()
	if !ok {
		return "", nil
	}
	if !c.session.ExpiringSoon(token) {
		return token, nil
	}
	return c.refreshToken(ctx, token)
}

// refreshToken обменивает текущий токен на новый.
// Параллельные запросы ждут один общий refresh. При неудаче сессия
// завершается один раз, а все ожидающие получают ErrSessionExpired.
func (c *Client) refreshToken(ctx context.Context, current string) (string, error) {
	v, err, _ := c.refresh.Do("refresh", func() (any, error) {
		// отмена контекста одного вызывающего не должна рвать общий refresh
		rctx := context.WithoutCancel(ctx)

		latest, ok := c.session.GetToken()
		if !ok {
			// сессию уже завершил предыдущий refresh или 401,
			// повторные teardown и редирект не нужны
			return "", fmt.Errorf("%w: session already ended", ErrSessionExpired)
		}
		// токен мог быть обновлен другим запросом, пока этот ждал
		if latest != current && !c.session.ExpiringSoon(latest) {
			return latest, nil
		}

		status, respBody, err := c.send(rctx, http.MethodPost, "/auth/refresh", nil, latest)
		if err != nil {
			c.endSession(rctx, "token refresh failed", "error", err)
			return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		if status < 200 || status >= 300 {
			apiErr := decodeError(status, respBody)
			c.endSession(rctx, "token refresh rejected", "status", status)
			return "", fmt.Errorf("%w: %v", ErrSessionExpired, apiErr)
		}

		var resp api.RefreshResponse
		if err := json.Unmarshal(respBody, &resp); err != nil || resp.Token == "" {
			c.endSession(rctx, "token refresh returned no token")
			return "", fmt.Errorf("%w: refresh response has no token", ErrSessionExpired)
		}

		if err := c.session.SetToken(rctx, resp.Token); err != nil {
			// токен уже в памяти, запрос можно продолжать
			c.logger.Warn("failed to persist refreshed token", "error", err)
		}
		c.logger.Debug("token refreshed")
		return resp.Token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// endSession удаляет токен и уводит на логин
func (c *Client) endSession(ctx context.Context, reason string, args ...any) {
	c.logger.Warn(reason, args...)
	if err := c.session.RemoveToken(ctx); err != nil {
		c.logger.Error("failed to remove token", "error", err)
	}
	c.redirector.Redirect(ctx, LoginRoute)
}

// send выполняет один HTTP запрос и возвращает статус и тело ответа
func (c *Client) send(ctx context.Context, method, path string, body any, token string) (int, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("HTTP request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"authorized", token != "",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return resp.StatusCode, respBody, nil
}

// decodeError строит APIError из тела не-2xx ответа
func decodeError(status int, body []byte) *APIError {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && (errResp.Message != "" || errResp.Error != "") {
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		return &APIError{StatusCode: status, Code: errResp.Error, Message: msg}
	}
	return &APIError{
		StatusCode: status,
		Message:    fmt.Sprintf("request failed with status %d: %s", status, bytes.TrimSpace(body)),
	}
}
