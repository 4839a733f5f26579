package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/internhub/internal/client/iocli"
	"github.com/iudanet/internhub/internal/client/payment"
)

// maxActionAttempts - сколько раз переспрашивать неизвестное действие
const maxActionAttempts = 3

var errNoAction = errors.New("no checkout action selected")

// Terminal - checkout widget для терминала. Показывает заказ и
// спрашивает у студента результат оплаты, выполненной у шлюза.
type Terminal struct {
	io iocli.IO
}

// NewTerminal создает терминальный widget
func NewTerminal(console iocli.IO) *Terminal {
	return &Terminal{io: console}
}

// Open выводит заказ и вызывает ровно один callback
func (t *Terminal) Open(ctx context.Context, opts payment.CheckoutOptions, cb Callbacks) error {
	t.render(opts)

	for range maxActionAttempts {
		if err := ctx.Err(); err != nil {
			return err
		}

		action, err := t.io.ReadInput("Action [pay/fail/cancel]: ")
		if err != nil {
			return fmt.Errorf("failed to read action: %w", err)
		}

		switch strings.ToLower(action) {
		case "pay", "p":
			receipt, err := t.readReceipt(opts.OrderID)
			if err != nil {
				return err
			}
			cb.Handler(receipt)
			return nil
		case "fail", "f":
			failure, err := t.readFailure()
			if err != nil {
				return err
			}
			cb.OnFailed(failure)
			return nil
		case "cancel", "c", "":
			cb.OnDismiss()
			return nil
		default:
			t.io.Printf("Unknown action %q\n", action)
		}
	}
	return errNoAction
}

func (t *Terminal) render(opts payment.CheckoutOptions) {
	t.io.Println()
	t.io.Printf("=== %s Checkout ===\n", opts.Name)
	if opts.Description != "" {
		t.io.Printf("Program:  %s\n", opts.Description)
	}
	t.io.Printf("Amount:   %s %s\n", FormatAmount(opts.Amount), opts.Currency)
	t.io.Printf("Order ID: %s\n", opts.OrderID)
	t.io.Printf("Key:      %s\n", opts.Key)
	if opts.Prefill.Email != "" {
		t.io.Printf("Payer:    %s <%s>\n", opts.Prefill.FullName, opts.Prefill.Email)
	}
	t.io.Println()
	t.io.Println("Complete the payment with the gateway, then enter the result.")
}

func (t *Terminal) readReceipt(orderID string) (payment.Receipt, error) {
	paymentID, err := t.io.ReadInput("Payment ID: ")
	if err != nil {
		return payment.Receipt{}, fmt.Errorf("failed to read payment id: %w", err)
	}
	signature, err := t.io.ReadInput("Signature: ")
	if err != nil {
		return payment.Receipt{}, fmt.Errorf("failed to read signature: %w", err)
	}
	return payment.Receipt{
		PaymentID: paymentID,
		OrderID:   orderID,
		Signature: signature,
	}, nil
}

func (t *Terminal) readFailure() (payment.Failure, error) {
	code, err := t.io.ReadInput("Error code: ")
	if err != nil {
		return payment.Failure{}, fmt.Errorf("failed to read error code: %w", err)
	}
	description, err := t.io.ReadInput("Description: ")
	if err != nil {
		return payment.Failure{}, fmt.Errorf("failed to read description: %w", err)
	}
	return payment.Failure{
		Code:        code,
		Description: description,
		Reason:      "payment_failed",
	}, nil
}

// FormatAmount переводит пайсы в рупии: 49950 -> "499.50"
func FormatAmount(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%s%d.%02d", sign, paise/100, paise%100)
}
