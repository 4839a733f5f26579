// Package cli реализует команды терминального клиента InternHub
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/iudanet/internhub/internal/client/auth"
	"github.com/iudanet/internhub/internal/client/iocli"
	"github.com/iudanet/internhub/internal/client/payment"
)

// AuthService - операции сессии, которые использует CLI
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Profile, error)
	Login(ctx context.Context, email, password string) (*auth.Profile, error)
	Validate(ctx context.Context) (*auth.Profile, error)
	Logout(ctx context.Context) error
}

// PaymentService - оплата программы
type PaymentService interface {
	Checkout(ctx context.Context, item payment.Item, contact payment.Contact) (*payment.Confirmation, error)
	Status() payment.Status
	Retry() error
}

type Cli struct {
	io          iocli.IO
	authService AuthService
	payments    PaymentService
	logger      *slog.Logger
}

func New(console iocli.IO, authService AuthService, payments PaymentService, logger *slog.Logger) *Cli {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cli{
		io:          console,
		authService: authService,
		payments:    payments,
		logger:      logger,
	}
}

func PrintUsage(w io.Writer) {
	lines := []string{
		"InternHub Client",
		"",
		"Usage:",
		"  internhub [OPTIONS] COMMAND",
		"",
		"Options:",
		"  --version                Show version information",
		"  --server URL             API base URL (env INTERNHUB_API_URL)",
		"  --db PATH                Path to local session database (env INTERNHUB_DB_PATH)",
		"  --ephemeral              Keep the session in memory only",
		"  --verbose                Enable debug logging",
		"",
		"Environment:",
		"  INTERNHUB_TOKEN_PASSPHRASE   Encrypt the stored session token",
		"  INTERNHUB_REQUEST_TIMEOUT    Request timeout (default: 30s)",
		"  INTERNHUB_LOG_LEVEL          debug, info, warn or error",
		"",
		"Commands:",
		"  register                          Create a student account",
		"  login                             Login to InternHub",
		"  logout                            Delete the local session",
		"  status                            Show authentication status",
		"  profile                           Show your profile",
		"  enroll <program-id> <amount> [title]  Pay for a program and enroll",
		"",
		"Examples:",
		"  internhub register",
		"  internhub login",
		"  internhub enroll prog_go_backend 4999 \"Go Backend Internship\"",
		"  internhub --server https://api.example.com status",
	}
	for _, line := range lines {
		_, _ = fmt.Fprintln(w, line)
	}
}
