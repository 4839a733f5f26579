// Package payment реализует конечный автомат одной попытки оплаты:
// создание заказа, checkout widget и проверку платежа на сервере.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	clientapi "github.com/iudanet/internhub/internal/client/api"
	"github.com/iudanet/internhub/pkg/api"
)

const (
	// MinimumAmount - минимальная сумма к оплате в рупиях
	MinimumAmount = 1.0

	// CheckoutName показывается в заголовке checkout widget
	CheckoutName = "InternHub"

	msgCancelled          = "Payment cancelled by user"
	msgInitiateFailed     = "Failed to initiate payment"
	msgVerificationFailed = "Payment verification failed"
	msgPaymentFailed      = "Payment failed"
	msgSuccess            = "Payment successful"
)

// Controller управляет одной попыткой оплаты.
// idle -> processing -> {success, failed}, failed -> idle через Retry.
type Controller struct {
	gateway      Gateway
	checkout     Checkout
	logger       *slog.Logger
	item         *Item
	order        *Order
	confirmation *Confirmation
	message      string
	attempt      uint64
	mu           sync.Mutex
	state        State
	verifying    bool
}

// NewController создает контроллер в состоянии idle
func NewController(gateway Gateway, checkout Checkout, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		gateway:  gateway,
		checkout: checkout,
		logger:   logger,
		state:    StateIdle,
	}
}

// Status возвращает снимок текущего состояния
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:        c.state,
		Message:      c.message,
		Order:        c.order,
		Confirmation: c.confirmation,
	}
}

// State возвращает текущее состояние
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Initiate создает заказ на backend для item.
// Сумма ниже MinimumAmount поднимается до минимума, итоговую цену определяет сервер.
func (c *Controller) Initiate(ctx context.Context, item Item, contact Contact) (*Order, error) {
	if item.ID == "" {
		return nil, fmt.Errorf("item id is required")
	}
	if math.IsInf(item.Amount, 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, item.Amount)
	}

	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: initiate from %s", ErrInvalidState, state)
	}
	item.Amount = resolveAmount(item.Amount)
	c.state = StateProcessing
	c.message = ""
	c.item = &item
	c.attempt++
	attempt := c.attempt
	c.mu.Unlock()

	resp, err := c.gateway.InitiatePayment(ctx, api.InitiatePaymentRequest{
		ItemID:   item.ID,
		Amount:   item.Amount,
		Email:    contact.Email,
		FullName: contact.FullName,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateProcessing || c.attempt != attempt {
		// попытку отменили, пока создавался заказ
		return nil, ErrStaleCallback
	}
	if err != nil {
		c.failLocked(clientapi.ServerMessage(err, msgInitiateFailed))
		return nil, fmt.Errorf("failed to initiate payment: %w", err)
	}
	if resp.OrderID == "" {
		c.failLocked(msgInitiateFailed)
		return nil, fmt.Errorf("failed to initiate payment: server returned no order id")
	}

	c.order = &Order{
		ID:            resp.OrderID,
		ItemID:        item.ID,
		KeyID:         resp.KeyID,
		Currency:      resp.Currency,
		AmountInPaise: resp.AmountInPaise,
	}
	c.logger.Info("payment order created",
		"order_id", resp.OrderID,
		"item_id", item.ID,
		"amount_paise", resp.AmountInPaise)

	order := *c.order
	return &order, nil
}

// Confirm передает результат checkout на проверку.
// success наступает только после подтверждения сервером.
func (c *Controller) Confirm(ctx context.Context, receipt Receipt) (*Confirmation, error) {
	c.mu.Lock()
	if c.state != StateProcessing || c.order == nil || c.verifying {
		c.mu.Unlock()
		c.logger.Warn("ignoring checkout callback", "order_id", receipt.OrderID)
		return nil, ErrStaleCallback
	}
	if receipt.OrderID != c.order.ID {
		c.mu.Unlock()
		c.logger.Warn("ignoring checkout callback for another order",
			"order_id", receipt.OrderID)
		return nil, ErrStaleCallback
	}
	c.verifying = true
	itemID := c.order.ItemID
	c.mu.Unlock()

	resp, err := c.gateway.VerifyPayment(ctx, api.VerifyPaymentRequest{
		PaymentID: receipt.PaymentID,
		OrderID:   receipt.OrderID,
		Signature: receipt.Signature,
		ItemID:    itemID,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.verifying = false

	if err != nil {
		c.failLocked(clientapi.ServerMessage(err, msgVerificationFailed))
		return nil, fmt.Errorf("payment verification failed: %w", err)
	}

	confirmation, err := newConfirmation(resp, receipt)
	if err != nil {
		msg := msgVerificationFailed
		if resp != nil && resp.Message != "" {
			msg = resp.Message
		}
		c.failLocked(msg)
		return nil, fmt.Errorf("payment verification failed: %s", msg)
	}

	c.state = StateSuccess
	c.message = msgSuccess
	c.confirmation = confirmation
	c.logger.Info("payment verified",
		"order_id", receipt.OrderID,
		"enrollment_id", confirmation.enrollment.ID)

	return confirmation, nil
}

// Cancel обрабатывает закрытие checkout без оплаты.
// Проверка на сервере не вызывается.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateProcessing {
		return fmt.Errorf("%w: cancel from %s", ErrInvalidState, c.state)
	}
	if c.verifying {
		return ErrVerificationInProgress
	}
	c.failLocked(msgCancelled)
	return nil
}

// Fail обрабатывает событие payment.failed.
// Backend уведомляется best-effort, ошибка уведомления не меняет состояние.
func (c *Controller) Fail(ctx context.Context, failure Failure) error {
	c.mu.Lock()
	if c.state != StateProcessing {
		c.mu.Unlock()
		return ErrStaleCallback
	}
	if c.verifying {
		c.mu.Unlock()
		return ErrVerificationInProgress
	}

	msg := failure.Description
	if msg == "" {
		msg = failure.Reason
	}
	if msg == "" {
		msg = msgPaymentFailed
	}
	c.failLocked(msg)

	report := api.PaymentFailureRequest{
		PaymentID:   failure.PaymentID,
		Code:        failure.Code,
		Description: failure.Description,
		Reason:      failure.Reason,
	}
	if c.order != nil {
		report.OrderID = c.order.ID
		report.ItemID = c.order.ItemID
	} else if c.item != nil {
		report.ItemID = c.item.ID
	}
	c.mu.Unlock()

	if err := c.gateway.ReportPaymentFailure(ctx, report); err != nil {
		c.logger.Warn("failed to report payment failure", "order_id", report.OrderID, "error", err)
	}
	return nil
}

// Retry возвращает контроллер из failed в idle
func (c *Controller) Retry() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateFailed {
		return fmt.Errorf("%w: retry from %s", ErrInvalidState, c.state)
	}
	c.state = StateIdle
	c.message = ""
	c.item = nil
	c.order = nil
	return nil
}

// Checkout проводит попытку целиком: заказ, widget, проверка
func (c *Controller) Checkout(ctx context.Context, item Item, contact Contact) (*Confirmation, error) {
	order, err := c.Initiate(ctx, item, contact)
	if err != nil {
		return nil, err
	}

	result, err := c.checkout.Open(ctx, CheckoutOptions{
		Key:         order.KeyID,
		Amount:      order.AmountInPaise,
		Currency:    order.Currency,
		OrderID:     order.ID,
		Name:        CheckoutName,
		Description: item.Title,
		Prefill:     contact,
	})
	if err != nil {
		// widget не смог завершиться, считаем это отменой без оплаты
		if cancelErr := c.Cancel(); cancelErr != nil {
			c.logger.Warn("failed to cancel payment", "error", cancelErr)
		}
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	switch result.Outcome {
	case OutcomeCompleted:
		if result.Receipt == nil {
			return nil, c.abort(ctx, "checkout completed without receipt")
		}
		return c.Confirm(ctx, *result.Receipt)
	case OutcomeDismissed:
		if err := c.Cancel(); err != nil {
			return nil, err
		}
		return nil, ErrCancelled
	case OutcomeFailed:
		failure := Failure{Code: "UNKNOWN"}
		if result.Failure != nil {
			failure = *result.Failure
		}
		if err := c.Fail(ctx, failure); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, c.Status().Message)
	default:
		return nil, c.abort(ctx, fmt.Sprintf("unknown checkout outcome %d", result.Outcome))
	}
}

// abort переводит попытку в failed через путь payment.failed
func (c *Controller) abort(ctx context.Context, reason string) error {
	if err := c.Fail(ctx, Failure{Code: "CLIENT_ERROR", Reason: reason}); err != nil && !errors.Is(err, ErrStaleCallback) {
		return err
	}
	return fmt.Errorf("%w: %s", ErrPaymentFailed, reason)
}

func (c *Controller) failLocked(msg string) {
	c.state = StateFailed
	c.message = msg
	c.logger.Info("payment attempt failed", "message", msg)
}

// resolveAmount поднимает сумму до минимального платежа.
// -Inf и NaN тоже становятся минимумом, +Inf отсекается в Initiate.
func resolveAmount(amount float64) float64 {
	if math.IsNaN(amount) || amount < MinimumAmount {
		return MinimumAmount
	}
	return amount
}
