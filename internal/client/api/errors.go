package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized - сервер отклонил запрос (401), сессия уже удалена
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionExpired - не удалось обновить токен, исходный запрос не отправлялся
	ErrSessionExpired = errors.New("session expired")
)

// APIError описывает ответ backend с не-2xx статусом
type APIError struct {
	Code       string // поле error из ответа
	Message    string // поле message из ответа или сырое тело
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Unwrap позволяет errors.Is(err, ErrUnauthorized) для 401
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// ServerMessage возвращает текст ошибки от backend, пригодный для показа
// пользователю. Для ошибок без ответа сервера возвращается fallback.
func ServerMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
