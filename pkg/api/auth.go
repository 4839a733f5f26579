package api

import "time"

// User представляет профиль пользователя, который возвращает backend
type User struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`                // student | admin
	Phone     string    `json:"phone,omitempty"`     // телефон для prefill в checkout
	College   string    `json:"college,omitempty"`   // учебное заведение студента
	Referral  string    `json:"referral,omitempty"`  // реферальный код, выданный администратором
	AvatarURL string    `json:"avatarUrl,omitempty"` // ссылка на аватар
}

// RegisterRequest представляет запрос на регистрацию нового студента
type RegisterRequest struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone,omitempty"`
	ReferralCode string `json:"referralCode,omitempty"`
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse представляет ответ на успешный login/register
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"` // JWT bearer token
}

// RefreshResponse представляет ответ на обновление токена
type RefreshResponse struct {
	Token string `json:"token"`
}

// ProfileResponse представляет ответ с профилем текущего пользователя
type ProfileResponse struct {
	User User `json:"user"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
