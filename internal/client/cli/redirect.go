package cli

import (
	"context"
	"fmt"
	"io"

	clientapi "github.com/iudanet/internhub/internal/client/api"
)

// NewRedirector переводит маршрут gateway в подсказку для терминала.
// Маршрут логина соответствует команде 'internhub login'.
func NewRedirector(w io.Writer) clientapi.Redirector {
	return clientapi.RedirectFunc(func(ctx context.Context, route string) {
		if route == clientapi.LoginRoute {
			_, _ = fmt.Fprintln(w, "Your session has ended. Please run 'internhub login' to sign in again.")
			return
		}
		_, _ = fmt.Fprintf(w, "Please open %s\n", route)
	})
}
