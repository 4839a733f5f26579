package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errNoExpiry = errors.New("token has no exp claim")

// Claims представляет identity/role claims из payload токена.
// Подпись на клиенте не проверяется, это делает backend.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Expiry возвращает время истечения токена
func (c *Claims) Expiry() time.Time {
	return c.ExpiresAt.Time
}

// IsAdmin сообщает, выдан ли токен администратору
func (c *Claims) IsAdmin() bool {
	return c.Role == "admin"
}

// parser разбирает токен без проверки подписи
var parser = jwt.NewParser()

// decodeClaims возвращает claims токена или ошибку, если токен не
// состоит из трех сегментов, payload не JSON или нет exp
func decodeClaims(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil {
		return nil, errNoExpiry
	}
	return claims, nil
}
