package payment

import (
	"context"
	"errors"

	"github.com/iudanet/internhub/pkg/api"
)

var (
	// ErrInvalidState - операция недопустима в текущем состоянии
	ErrInvalidState = errors.New("operation not allowed in current payment state")

	// ErrStaleCallback - результат checkout пришел для другого заказа
	// или после того, как попытка уже завершилась
	ErrStaleCallback = errors.New("stale checkout callback ignored")

	// ErrVerificationInProgress - попытка уже на проверке у сервера
	ErrVerificationInProgress = errors.New("payment verification in progress")

	// ErrCancelled - пользователь закрыл checkout
	ErrCancelled = errors.New("payment cancelled by user")

	// ErrPaymentFailed - шлюз сообщил об ошибке оплаты
	ErrPaymentFailed = errors.New("payment failed")

	// ErrInvalidAmount - сумму нельзя передать backend
	ErrInvalidAmount = errors.New("invalid payment amount")
)

// State - состояние попытки оплаты
type State int

const (
	StateIdle State = iota
	StateProcessing
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Item - оплачиваемая программа
type Item struct {
	ID     string
	Title  string
	Amount float64 // в рупиях
}

// Contact - контактные данные для prefill checkout
type Contact struct {
	FullName string
	Email    string
	Phone    string
}

// Order - заказ, созданный backend для одной попытки оплаты
type Order struct {
	ID            string
	ItemID        string
	KeyID         string
	Currency      string
	AmountInPaise int64
}

// Receipt - то, что checkout передает в handler после оплаты
type Receipt struct {
	PaymentID string
	OrderID   string
	Signature string
}

// Failure - событие payment.failed от checkout
type Failure struct {
	Code        string
	Description string
	Reason      string
	PaymentID   string
}

// Outcome - чем закончился checkout
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeDismissed
	OutcomeFailed
)

// CheckoutOptions повторяют параметры конструктора checkout widget
type CheckoutOptions struct {
	Prefill     Contact
	Key         string
	Currency    string
	OrderID     string
	Name        string
	Description string
	Amount      int64 // в пайсах
}

// CheckoutResult - итог checkout. Receipt заполнен для OutcomeCompleted,
// Failure для OutcomeFailed.
type CheckoutResult struct {
	Receipt *Receipt
	Failure *Failure
	Outcome Outcome
}

// Checkout открывает checkout widget и блокируется до его результата
type Checkout interface {
	Open(ctx context.Context, opts CheckoutOptions) (CheckoutResult, error)
}

// Gateway - платежные вызовы backend
type Gateway interface {
	InitiatePayment(ctx context.Context, req api.InitiatePaymentRequest) (*api.InitiatePaymentResponse, error)
	VerifyPayment(ctx context.Context, req api.VerifyPaymentRequest) (*api.VerifyPaymentResponse, error)
	ReportPaymentFailure(ctx context.Context, req api.PaymentFailureRequest) error
}

// Confirmation - подтвержденный сервером результат оплаты.
// Создается только из ответа проверки, поэтому состояние success
// недостижимо без подтверждения backend.
type Confirmation struct {
	enrollment api.Enrollment
	paymentID  string
	orderID    string
}

// newConfirmation строит Confirmation из ответа verify
func newConfirmation(resp *api.VerifyPaymentResponse, receipt Receipt) (*Confirmation, error) {
	if resp == nil || resp.Enrollment == nil {
		return nil, errors.New("verification response has no enrollment")
	}
	return &Confirmation{
		enrollment: *resp.Enrollment,
		paymentID:  receipt.PaymentID,
		orderID:    receipt.OrderID,
	}, nil
}

// Enrollment возвращает созданное зачисление
func (c *Confirmation) Enrollment() api.Enrollment { return c.enrollment }

// PaymentID возвращает идентификатор платежа у шлюза
func (c *Confirmation) PaymentID() string { return c.paymentID }

// OrderID возвращает идентификатор заказа
func (c *Confirmation) OrderID() string { return c.orderID }

// Status - снимок состояния контроллера для отображения
type Status struct {
	Order        *Order
	Confirmation *Confirmation
	Message      string
	State        State
}
