package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	clientapi "github.com/iudanet/internhub/internal/client/api"
	"github.com/iudanet/internhub/internal/client/auth"
	"github.com/iudanet/internhub/internal/client/checkout"
	"github.com/iudanet/internhub/internal/client/payment"
)

const enrollUsage = "usage: internhub enroll <program-id> <amount> [title]"

func (c *Cli) runEnroll(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New(enrollUsage)
	}

	programID := strings.TrimSpace(args[0])
	if programID == "" {
		return errors.New(enrollUsage)
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		return fmt.Errorf("invalid amount %q: must be a finite number", args[1])
	}
	title := strings.TrimSpace(strings.Join(args[2:], " "))
	if title == "" {
		title = programID
	}

	profile, err := c.authService.Validate(ctx)
	if errors.Is(err, auth.ErrNotAuthenticated) {
		return fmt.Errorf("not authenticated. Please run 'internhub login' first")
	}
	if err != nil {
		return err
	}

	item := payment.Item{ID: programID, Title: title, Amount: amount}
	contact := payment.Contact{
		FullName: profile.User.FullName,
		Email:    profile.User.Email,
		Phone:    profile.User.Phone,
	}
	if contact.Email == "" {
		contact.Email = profile.Claims.Email
	}

	c.io.Println("=== Enrollment ===")
	c.io.Printf("Program: %s\n", title)

	for {
		confirmation, err := c.payments.Checkout(ctx, item, contact)
		if err == nil {
			c.printConfirmation(confirmation)
			return nil
		}

		status := c.payments.Status()
		c.logger.Debug("checkout finished without enrollment", "state", status.State.String(), "error", err)

		if status.State != payment.StateFailed {
			return err
		}
		c.io.Printf("✗ %s\n", status.Message)

		// сессия уже завершена, повтор не поможет
		if errors.Is(err, clientapi.ErrUnauthorized) || errors.Is(err, clientapi.ErrSessionExpired) {
			return err
		}

		again, readErr := c.io.Confirm("Try again? [y/N]: ")
		if readErr != nil || !again {
			if errors.Is(err, payment.ErrCancelled) {
				return nil
			}
			return err
		}
		if err := c.payments.Retry(); err != nil {
			return fmt.Errorf("failed to reset payment: %w", err)
		}
	}
}

func (c *Cli) printConfirmation(confirmation *payment.Confirmation) {
	enrollment := confirmation.Enrollment()

	c.io.Println()
	c.io.Println("✓ Payment successful!")
	c.io.Printf("Enrollment ID: %s\n", enrollment.ID)
	c.io.Printf("Program ID: %s\n", enrollment.ProgramID)
	if enrollment.Status != "" {
		c.io.Printf("Status: %s\n", enrollment.Status)
	}
	c.io.Printf("Payment ID: %s\n", confirmation.PaymentID())
	c.io.Printf("Order ID: %s\n", confirmation.OrderID())
	if order := c.payments.Status().Order; order != nil {
		c.io.Printf("Amount paid: %s %s\n", checkout.FormatAmount(order.AmountInPaise), order.Currency)
	}
}
