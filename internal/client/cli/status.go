package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/internhub/internal/client/auth"
	"github.com/iudanet/internhub/internal/client/iocli"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	profile, err := c.authService.Validate(ctx)
	if errors.Is(err, auth.ErrNotAuthenticated) {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'internhub login' to authenticate.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Email: %s\n", profile.User.Email)
	c.io.Printf("Role: %s\n", profile.User.Role)
	if profile.Claims.IsAdmin() {
		c.io.Println("Admin access: yes")
	}
	printExpiry(c.io, profile)

	return nil
}

func (c *Cli) runProfile(ctx context.Context) error {
	profile, err := c.authService.Validate(ctx)
	if errors.Is(err, auth.ErrNotAuthenticated) {
		return fmt.Errorf("not authenticated. Please run 'internhub login' first")
	}
	if err != nil {
		return err
	}

	u := profile.User
	c.io.Println("=== Profile ===")
	c.io.Printf("ID:        %s\n", u.ID)
	c.io.Printf("Full name: %s\n", u.FullName)
	c.io.Printf("Email:     %s\n", u.Email)
	c.io.Printf("Role:      %s\n", u.Role)
	if u.Phone != "" {
		c.io.Printf("Phone:     %s\n", u.Phone)
	}
	if u.College != "" {
		c.io.Printf("College:   %s\n", u.College)
	}
	if u.Referral != "" {
		c.io.Printf("Referral:  %s\n", u.Referral)
	}
	if !u.CreatedAt.IsZero() {
		c.io.Printf("Joined:    %s\n", u.CreatedAt.Format(time.DateOnly))
	}

	return nil
}

func printExpiry(out iocli.IO, profile *auth.Profile) {
	if profile.Claims.ExpiresAt == nil {
		return
	}
	expiresAt := profile.Claims.Expiry()
	out.Printf("Token expires: %s\n", expiresAt.Format(time.RFC3339))
	if remaining := time.Until(expiresAt); remaining > 0 {
		out.Printf("Time remaining: %s\n", remaining.Round(time.Second))
	}
}

func displayName(profile *auth.Profile) string {
	if profile.User.FullName != "" {
		return profile.User.FullName
	}
	if profile.User.Email != "" {
		return profile.User.Email
	}
	return profile.Claims.Email
}
