// Package config загружает настройки клиента из окружения и .env файла.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// DefaultRequestTimeout - общий таймаут HTTP запроса к backend
	DefaultRequestTimeout = 30 * time.Second

	// MaxRequestTimeout ограничивает значение из окружения
	MaxRequestTimeout = 5 * time.Minute
)

// ClientConfig - настройки клиента InternHub.
// Значения читаются из переменных окружения с префиксом INTERNHUB_,
// флаги командной строки переопределяют их в cmd/client.
type ClientConfig struct {
	// ServerURL - базовый адрес REST API
	ServerURL string `env:"API_URL" envDefault:"http://localhost:8080/api"`

	// DBPath - файл bbolt с сохраненной сессией
	DBPath string `env:"DB_PATH" envDefault:"internhub-client.db"`

	// LogLevel - debug, info, warn или error
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`

	// TokenPassphrase включает шифрование токена на диске
	TokenPassphrase string `env:"TOKEN_PASSPHRASE"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
}

// Sanitize применяет ограничения к значениям, загруженным из окружения
func (c *ClientConfig) Sanitize() {
	c.ServerURL = strings.TrimRight(strings.TrimSpace(c.ServerURL), "/")
	c.DBPath = strings.TrimSpace(c.DBPath)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.RequestTimeout > MaxRequestTimeout {
		c.RequestTimeout = MaxRequestTimeout
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "warn"
	}
}

// SlogLevel возвращает уровень логирования для slog
func (c *ClientConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// EncryptionEnabled сообщает, нужно ли шифровать токен на диске
func (c *ClientConfig) EncryptionEnabled() bool {
	return c.TokenPassphrase != ""
}

// Load читает .env файл (если он есть) и переменные окружения
func Load(envFiles ...string) (ClientConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return ClientConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return parse(env.Options{Prefix: "INTERNHUB_"})
}

func parse(opts env.Options) (ClientConfig, error) {
	var cfg ClientConfig
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}
