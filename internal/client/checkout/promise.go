// Package checkout связывает callback-style checkout widget
// с последовательным payment.Controller.
package checkout

import (
	"context"
	"sync"

	"github.com/iudanet/internhub/internal/client/payment"
)

// Callbacks - обработчики событий widget: handler, modal.ondismiss
// и payment.failed
type Callbacks struct {
	Handler   func(payment.Receipt)
	OnDismiss func()
	OnFailed  func(payment.Failure)
}

// Widget открывает checkout и сообщает результат через callbacks.
// Open может вернуться раньше, чем будет вызван какой-либо callback.
type Widget interface {
	Open(ctx context.Context, opts payment.CheckoutOptions, cb Callbacks) error
}

// WidgetFunc адаптирует функцию к Widget
type WidgetFunc func(ctx context.Context, opts payment.CheckoutOptions, cb Callbacks) error

func (f WidgetFunc) Open(ctx context.Context, opts payment.CheckoutOptions, cb Callbacks) error {
	return f(ctx, opts, cb)
}

// Promise оборачивает Widget в payment.Checkout.
// Результат разрешается один раз: первый callback побеждает,
// остальные отбрасываются.
func Promise(w Widget) payment.Checkout {
	return &promise{widget: w}
}

type promise struct {
	widget Widget
}

func (p *promise) Open(ctx context.Context, opts payment.CheckoutOptions) (payment.CheckoutResult, error) {
	results := make(chan payment.CheckoutResult, 1)
	var once sync.Once
	resolve := func(r payment.CheckoutResult) {
		once.Do(func() { results <- r })
	}

	cb := Callbacks{
		Handler: func(r payment.Receipt) {
			resolve(payment.CheckoutResult{Outcome: payment.OutcomeCompleted, Receipt: &r})
		},
		OnDismiss: func() {
			resolve(payment.CheckoutResult{Outcome: payment.OutcomeDismissed})
		},
		OnFailed: func(f payment.Failure) {
			resolve(payment.CheckoutResult{Outcome: payment.OutcomeFailed, Failure: &f})
		},
	}

	if err := p.widget.Open(ctx, opts, cb); err != nil {
		return payment.CheckoutResult{}, err
	}

	select {
	case r := <-results:
		return r, nil
	case <-ctx.Done():
		return payment.CheckoutResult{}, ctx.Err()
	}
}
