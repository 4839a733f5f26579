package api

import "time"

// InitiatePaymentRequest запрашивает создание заказа для оплаты программы
type InitiatePaymentRequest struct {
	ItemID   string  `json:"itemId"`
	Email    string  `json:"email"`
	FullName string  `json:"fullName"`
	Amount   float64 `json:"amount"` // в рупиях, итоговую цену определяет backend
}

// InitiatePaymentResponse описывает заказ, созданный у платежного шлюза
type InitiatePaymentResponse struct {
	OrderID       string `json:"orderId"`
	Currency      string `json:"currency"`
	KeyID         string `json:"keyId"` // публичный ключ для checkout widget
	AmountInPaise int64  `json:"amountInPaise"`
}

// VerifyPaymentRequest передает результат checkout на проверку подписи
type VerifyPaymentRequest struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Signature string `json:"signature"`
	ItemID    string `json:"itemId"`
}

// Enrollment представляет запись о зачислении на программу
type Enrollment struct {
	EnrolledAt time.Time `json:"enrolledAt"`
	ID         string    `json:"id"`
	ProgramID  string    `json:"programId"`
	UserID     string    `json:"userId"`
	Status     string    `json:"status"`
	PaymentID  string    `json:"paymentId"`
}

// VerifyPaymentResponse возвращается после успешной проверки платежа
type VerifyPaymentResponse struct {
	Enrollment *Enrollment `json:"enrollment"`
	Message    string      `json:"message,omitempty"`
}

// PaymentFailureRequest отправляется best-effort, когда шлюз сообщил об ошибке
type PaymentFailureRequest struct {
	OrderID     string `json:"orderId"`
	ItemID      string `json:"itemId"`
	PaymentID   string `json:"paymentId,omitempty"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Reason      string `json:"reason,omitempty"`
}
