package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iudanet/internhub/pkg/api"
)

// Register регистрирует нового студента
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// RefreshToken принудительно обновляет текущий токен.
// При неудаче сессия завершается так же, как при автоматическом refresh.
func (c *Client) RefreshToken(ctx context.Context) error {
	token, ok := c.session.GetToken()
	if !ok {
		return fmt.Errorf("%w: no token to refresh", ErrSessionExpired)
	}
	if _, err := c.refreshToken(ctx, token); err != nil {
		return err
	}
	return nil
}

// Profile получает профиль текущего пользователя
func (c *Client) Profile(ctx context.Context) (*api.ProfileResponse, error) {
	var resp api.ProfileResponse
	if err := c.doRequest(ctx, http.MethodGet, "/auth/profile", nil, &resp); err != nil {
		return nil, fmt.Errorf("get profile request failed: %w", err)
	}
	return &resp, nil
}

// InitiatePayment создает заказ у платежного шлюза
func (c *Client) InitiatePayment(ctx context.Context, req api.InitiatePaymentRequest) (*api.InitiatePaymentResponse, error) {
	var resp api.InitiatePaymentResponse
	if err := c.doRequest(ctx, http.MethodPost, "/payments/initiate", req, &resp); err != nil {
		return nil, fmt.Errorf("initiate payment request failed: %w", err)
	}
	return &resp, nil
}

// VerifyPayment отправляет результат checkout на проверку подписи
func (c *Client) VerifyPayment(ctx context.Context, req api.VerifyPaymentRequest) (*api.VerifyPaymentResponse, error) {
	var resp api.VerifyPaymentResponse
	if err := c.doRequest(ctx, http.MethodPost, "/payments/verify", req, &resp); err != nil {
		return nil, fmt.Errorf("verify payment request failed: %w", err)
	}
	return &resp, nil
}

// ReportPaymentFailure сообщает backend об ошибке оплаты, ответ игнорируется
func (c *Client) ReportPaymentFailure(ctx context.Context, req api.PaymentFailureRequest) error {
	if err := c.doRequest(ctx, http.MethodPost, "/payments/failure", req, nil); err != nil {
		return fmt.Errorf("report payment failure request failed: %w", err)
	}
	return nil
}
