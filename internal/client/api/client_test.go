package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/internhub/internal/client/session"
	"github.com/iudanet/internhub/internal/client/storage"
	"github.com/iudanet/internhub/internal/client/storage/memory"
	"github.com/iudanet/internhub/pkg/api"
)

var testNow = time.Unix(1_700_000_000, 0)

func signToken(t *testing.T, subject string, exp time.Time) string {
	t.Helper()

	claims := session.Claims{
		UserID: "user-1",
		Role:   "student",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

// recordingRedirector запоминает все редиректы
type recordingRedirector struct {
	routes []string
	mu     sync.Mutex
}

func (r *recordingRedirector) Redirect(ctx context.Context, route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *recordingRedirector) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.routes...)
}

type testEnv struct {
	client     *Client
	session    *session.Manager
	store      *memory.Storage
	redirector *recordingRedirector
}

// newTestEnv поднимает клиента с реальным менеджером сессии и фиксированными часами
func newTestEnv(t *testing.T, baseURL, token string) *testEnv {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	if token != "" {
		require.NoError(t, store.SaveToken(ctx, token))
	}
	mgr := session.NewManager(store, nil, session.WithClock(func() time.Time { return testNow }))
	require.NoError(t, mgr.Init(ctx))

	redirector := &recordingRedirector{}
	return &testEnv{
		client:     NewClient(baseURL, mgr, WithRedirector(redirector)),
		session:    mgr,
		store:      store,
		redirector: redirector,
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:5000/api"
	client := NewClient(baseURL, session.NewManager(memory.New(), nil))

	assert.NotNil(t, client)
	assert.Equal(t, baseURL, client.baseURL)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)

	client = NewClient(baseURL, nil, WithTimeout(5*time.Second))
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestRequest_NoToken_SentUnauthenticated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "student@example.com", req.Email)

		writeJSON(t, w, http.StatusOK, api.AuthResponse{
			User:  api.User{ID: "user-1", Email: req.Email},
			Token: "issued-token",
		})
	}))
	defer server.Close()

	env := newTestEnv(t, server.URL, "")
	resp, err := env.client.Login(context.Background(), api.LoginRequest{Email: "student@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "issued-token", resp.Token)
	assert.Equal(t, "user-1", resp.User.ID)
}

func TestRequest_FreshToken_AttachesBearer(t *testing.T) {
	token := signToken(t, "fresh", testNow.Add(time.Hour))
	var refreshCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			refreshCalls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		case "/auth/profile":
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
			writeJSON(t, w, http.StatusOK, api.ProfileResponse{User: api.User{ID: "user-1"}})
		}
	}))
	defer server.Close()

	env := newTestEnv(t, server.URL, token)
	resp, err := env.client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Zero(t, refreshCalls.Load())
}

func TestRequest_ExpiringToken_RefreshedTokenIsAttached(t *testing.T) {
	stale := signToken(t, "stale", testNow.Add(2*time.Minute))
	renewed := signToken(t, "renewed", testNow.Add(time.Hour))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer "+stale, r.Header.Get("Authorization"))
			writeJSON(t, w, http.StatusOK, api.RefreshResponse{Token: renewed})
		case "/auth/profile":
			// Исходный запрос должен уйти уже с новым токеном
			assert.Equal(t, "Bearer "+renewed, r.Header.Get("Authorization"))
			writeJSON(t, w, http.StatusOK, api.ProfileResponse{User: api.User{ID: "user-1"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	env := newTestEnv(t, server.URL, stale)
	_, err := env.client.Profile(context.Background())
	require.NoError(t, err)

	got, ok := env.session.GetToken()
	require.True(t, ok)
	assert.Equal(t, renewed, got)

	persisted, err := env.store.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, renewed, persisted)
	assert.Empty(t, env.redirector.calls())
}

func TestRequest_ExpiringToken_RefreshFailure(t *testing.T) {
	tests := []struct {
		name    string
		refresh http.HandlerFunc
	}{
		{
			name: "refresh rejected with 401",
			refresh: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"token revoked"}`))
			},
		},
		{
			name: "refresh server error",
			refresh: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "refresh returns empty token",
			refresh: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"token":""}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var originalCalls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/auth/refresh" {
					tt.refresh(w, r)
					return
				}
				originalCalls.Add(1)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			env := newTestEnv(t, server.URL, signToken(t, "stale", testNow.Add(time.Minute)))
			_, err := env.client.Profile(context.Background())

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSessionExpired)
			assert.Zero(t, originalCalls.Load(), "original request must not be sent")

			_, ok := env.session.GetToken()
			assert.False(t, ok)
			_, err = env.store.GetToken(context.Background())
			assert.ErrorIs(t, err, storage.ErrTokenNotFound)

			assert.Equal(t, []string{LoginRoute}, env.redirector.calls())
		})
	}
}

func TestRequest_ExpiringToken_RefreshNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	env := newTestEnv(t, url, signToken(t, "stale", testNow.Add(time.Minute)))
	_, err := env.client.Profile(context.Background())

	assert.ErrorIs(t, err, ErrSessionExpired)
	_, ok := env.session.GetToken()
	assert.False(t, ok)
	assert.Equal(t, []string{LoginRoute}, env.redirector.calls())
}

// Запрос, прочитавший токен до teardown, не шлет refresh повторно
// и не вызывает второй редирект
func TestRefresh_AfterSessionEndedIsNoop(t *testing.T) {
	var refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			refreshCalls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	stale := signToken(t, "stale", testNow.Add(time.Minute))
	env := newTestEnv(t, server.URL, stale)

	_, err := env.client.Profile(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Equal(t, int32(1), refreshCalls.Load())

	// второй вызывающий все еще держит stale
	_, err = env.client.refreshToken(context.Background(), stale)
	assert.ErrorIs(t, err, ErrSessionExpired)

	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, []string{LoginRoute}, env.redirector.calls())
}

func TestRequest_ConcurrentRefreshIsShared(t *testing.T) {
	stale := signToken(t, "stale", testNow.Add(time.Minute))
	renewed := signToken(t, "renewed", testNow.Add(time.Hour))
	var refreshCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			refreshCalls.Add(1)
			time.Sleep(50 * time.Millisecond)
			writeJSON(t, w, http.StatusOK, api.RefreshResponse{Token: renewed})
			return
		}
		assert.Equal(t, "Bearer "+renewed, r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, api.ProfileResponse{})
	}))
	defer server.Close()

	env := newTestEnv(t, server.URL, stale)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.client.Profile(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), refreshCalls.Load())
}

func TestResponse_Unauthorized_PurgesTokenAndRedirectsOnce(t *testing.T) {
	calls := []struct {
		name string
		do   func(c *Client) error
	}{
		{name: "profile", do: func(c *Client) error {
			_, err := c.Profile(context.Background())
			return err
		}},
		{name: "initiate payment", do: func(c *Client) error {
			_, err := c.InitiatePayment(context.Background(), api.InitiatePaymentRequest{ItemID: "p-1", Amount: 499})
			return err
		}},
		{name: "verify payment", do: func(c *Client) error {
			_, err := c.VerifyPayment(context.Background(), api.VerifyPaymentRequest{OrderID: "order_1"})
			return err
		}},
		{name: "login", do: func(c *Client) error {
			_, err := c.Login(context.Background(), api.LoginRequest{Email: "a@b.co"})
			return err
		}},
	}

	for _, tt := range calls {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized", Message: "invalid token"})
			}))
			defer server.Close()

			env := newTestEnv(t, server.URL, signToken(t, "fresh", testNow.Add(time.Hour)))
			err := tt.do(env.client)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnauthorized)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
			assert.Equal(t, "invalid token", apiErr.Message)

			// Следующий GetToken возвращает отсутствие токена
			_, ok := env.session.GetToken()
			assert.False(t, ok)
			_, err = env.store.GetToken(context.Background())
			assert.ErrorIs(t, err, storage.ErrTokenNotFound)

			assert.Equal(t, []string{LoginRoute}, env.redirector.calls())
		})
	}
}

func TestResponse_NonAuthErrorsPassThrough(t *testing.T) {
	tests := []struct {
		body       string
		name       string
		wantMsg    string
		statusCode int
	}{
		{
			name:       "bad request with message",
			statusCode: http.StatusBadRequest,
			body:       `{"error":"validation","message":"amount is required"}`,
			wantMsg:    "server error (400): amount is required",
		},
		{
			name:       "forbidden is not an auth failure",
			statusCode: http.StatusForbidden,
			body:       `{"error":"forbidden"}`,
			wantMsg:    "server error (403): forbidden",
		},
		{
			name:       "plain text internal error",
			statusCode: http.StatusInternalServerError,
			body:       "Internal Server Error",
			wantMsg:    "request failed with status 500: Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			token := signToken(t, "fresh", testNow.Add(time.Hour))
			env := newTestEnv(t, server.URL, token)
			_, err := env.client.Profile(context.Background())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.NotErrorIs(t, err, ErrUnauthorized)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.statusCode, apiErr.StatusCode)

			got, ok := env.session.GetToken()
			assert.True(t, ok)
			assert.Equal(t, token, got)
			assert.Empty(t, env.redirector.calls())
		})
	}
}

func TestRequest_NetworkErrorPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	token := signToken(t, "fresh", testNow.Add(time.Hour))
	env := newTestEnv(t, url, token)
	_, err := env.client.Profile(context.Background())

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.NotErrorIs(t, err, ErrSessionExpired)

	_, ok := env.session.GetToken()
	assert.True(t, ok)
	assert.Empty(t, env.redirector.calls())
}

func TestRefreshToken_Explicit(t *testing.T) {
	renewed := signToken(t, "renewed", testNow.Add(time.Hour))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/refresh", r.URL.Path)
		writeJSON(t, w, http.StatusOK, api.RefreshResponse{Token: renewed})
	}))
	defer server.Close()

	env := newTestEnv(t, server.URL, signToken(t, "fresh", testNow.Add(time.Hour)))
	require.NoError(t, env.client.RefreshToken(context.Background()))
	got, _ := env.session.GetToken()
	assert.Equal(t, renewed, got)

	empty := newTestEnv(t, server.URL, "")
	assert.ErrorIs(t, empty.client.RefreshToken(context.Background()), ErrSessionExpired)
}

func TestPaymentEndpoints(t *testing.T) {
	token := signToken(t, "fresh", testNow.Add(time.Hour))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/payments/initiate":
			var req api.InitiatePaymentRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "p-1", req.ItemID)
			assert.Equal(t, 499.0, req.Amount)
			writeJSON(t, w, http.StatusOK, api.InitiatePaymentResponse{
				OrderID: "order_1", AmountInPaise: 49900, Currency: "INR", KeyID: "rzp_test_key",
			})
		case "/payments/verify":
			var req api.VerifyPaymentRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "pay_1", req.PaymentID)
			assert.Equal(t, "sig", req.Signature)
			writeJSON(t, w, http.StatusOK, api.VerifyPaymentResponse{
				Enrollment: &api.Enrollment{ID: "enr-1", ProgramID: "p-1", Status: "active"},
			})
		case "/payments/failure":
			var req api.PaymentFailureRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "BAD_REQUEST_ERROR", req.Code)
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	env := newTestEnv(t, server.URL, token)
	ctx := context.Background()

	order, err := env.client.InitiatePayment(ctx, api.InitiatePaymentRequest{ItemID: "p-1", Amount: 499})
	require.NoError(t, err)
	assert.Equal(t, "order_1", order.OrderID)
	assert.Equal(t, int64(49900), order.AmountInPaise)

	verified, err := env.client.VerifyPayment(ctx, api.VerifyPaymentRequest{PaymentID: "pay_1", OrderID: "order_1", Signature: "sig", ItemID: "p-1"})
	require.NoError(t, err)
	require.NotNil(t, verified.Enrollment)
	assert.Equal(t, "enr-1", verified.Enrollment.ID)

	require.NoError(t, env.client.ReportPaymentFailure(ctx, api.PaymentFailureRequest{OrderID: "order_1", Code: "BAD_REQUEST_ERROR"}))
}

func TestServerMessage(t *testing.T) {
	assert.Equal(t, "amount too low", ServerMessage(&APIError{StatusCode: 400, Message: "amount too low"}, "fallback"))
	assert.Equal(t, "fallback", ServerMessage(errors.New("dial tcp: refused"), "fallback"))
}
