package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MinFullNameLen минимальная длина ФИО
	MinFullNameLen = 2
	// MaxFullNameLen максимальная длина ФИО
	MaxFullNameLen = 100
)

// ValidateEmail проверяет, что email имеет формат local@domain
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email %q is not a valid address", email)
	}

	// mail.ParseAddress пропускает адреса без точки в домене
	at := strings.LastIndex(email, "@")
	if !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("email %q is not a valid address", email)
	}

	return nil
}

// ValidatePassword проверяет минимальные требования к паролю
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	return nil
}

// ValidateFullName проверяет ФИО студента
// Длина считается в символах, а не байтах
func ValidateFullName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("full name cannot be empty")
	}

	n := utf8.RuneCountInString(name)
	if n < MinFullNameLen {
		return fmt.Errorf("full name must be at least %d characters long", MinFullNameLen)
	}
	if n > MaxFullNameLen {
		return fmt.Errorf("full name must not exceed %d characters", MaxFullNameLen)
	}

	return nil
}
