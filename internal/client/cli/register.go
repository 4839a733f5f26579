package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/internhub/internal/client/auth"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	fullName, err := c.io.ReadInput("Full name: ")
	if err != nil {
		return fmt.Errorf("failed to read full name: %w", err)
	}

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	phone, err := c.io.ReadInput("Phone (optional): ")
	if err != nil {
		return fmt.Errorf("failed to read phone: %w", err)
	}

	referral, err := c.io.ReadInput("Referral code (optional): ")
	if err != nil {
		return fmt.Errorf("failed to read referral code: %w", err)
	}

	password, err := c.io.ReadPassword("Password (min 8 chars): ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	confirmPassword, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}

	if password != confirmPassword {
		return fmt.Errorf("passwords do not match")
	}

	c.io.Println()
	c.io.Println("Registering user...")

	profile, err := c.authService.Register(ctx, auth.RegisterInput{
		FullName:     fullName,
		Email:        email,
		Password:     password,
		Phone:        phone,
		ReferralCode: referral,
	})
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("User ID: %s\n", profile.User.ID)
	c.io.Printf("Email: %s\n", profile.User.Email)
	c.io.Println()
	c.io.Println("You are now logged in. Run 'internhub enroll' to join a program.")

	return nil
}
