package cli

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownCommand - команда не поддерживается
var ErrUnknownCommand = errors.New("unknown command")

// Run выполняет команду. Ошибку выводит вызывающий код.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "profile":
		return c.runProfile(ctx)
	case "enroll":
		return c.runEnroll(ctx, args)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}
