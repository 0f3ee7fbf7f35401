package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	service "github.com/aaravmahajanofficial/storefront-checkout/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPlacer fails while err is set and can be held open with release.
type stubPlacer struct {
	mu      sync.Mutex
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (p *stubPlacer) PlaceOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	p.mu.Lock()
	p.calls++
	err := p.err
	p.mu.Unlock()

	if p.started != nil {
		close(p.started)
	}

	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	return &models.Order{ID: "order-1", Items: req.Items, Summary: req.Summary, Status: models.OrderStatusPending}, nil
}

func (p *stubPlacer) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func filledCart() *service.CartStore {
	cart := service.NewCartStore()
	cart.AddToCart(candidate("p1", 1000))
	return cart
}

func newCheckout(t *testing.T, cart *service.CartStore, placer service.OrderPlacer, timeout time.Duration) *service.Checkout {
	t.Helper()

	checkout, err := service.NewCheckout(cart, service.NewCheckoutValidator(), service.NewOrderSubmitter(placer, timeout))
	require.NoError(t, err)

	return checkout
}

func toReview(t *testing.T, checkout *service.Checkout) {
	t.Helper()

	require.NoError(t, checkout.SubmitShipping(validAddress()))
	require.NoError(t, checkout.SubmitPayment(models.PaymentMethodRequest{Type: models.PaymentBankTransfer}))
	require.Equal(t, models.StepReview, checkout.Step())
}

func appCode(err error) string {
	if appErr, ok := appErrors.IsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

func TestNewCheckout(t *testing.T) {
	t.Run("Failure - Empty cart never reaches shipping", func(t *testing.T) {
		checkout, err := service.NewCheckout(service.NewCartStore(), service.NewCheckoutValidator(), nil)

		assert.Nil(t, checkout)
		assert.ErrorIs(t, err, service.ErrEmptyCart)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, service.CartPath, appErr.Redirect)
	})

	t.Run("Success - Starts on shipping", func(t *testing.T) {
		checkout := newCheckout(t, filledCart(), &stubPlacer{}, time.Second)

		snapshot := checkout.Snapshot()

		assert.Equal(t, models.StepShipping, snapshot.Step)
		assert.Equal(t, models.Money(1500), snapshot.Summary.Total)
	})
}

func TestCheckout_Transitions(t *testing.T) {
	t.Run("Failure - Blank required shipping field keeps the step", func(t *testing.T) {
		checkout := newCheckout(t, filledCart(), &stubPlacer{}, time.Second)
		addr := validAddress()
		addr.PostalCode = " "

		err := checkout.SubmitShipping(addr)

		assert.Equal(t, appErrors.ErrCodeValidation, appCode(err))
		assert.Equal(t, models.StepShipping, checkout.Step())
	})

	t.Run("Failure - No skipping ahead", func(t *testing.T) {
		checkout := newCheckout(t, filledCart(), &stubPlacer{}, time.Second)

		err := checkout.SubmitPayment(models.PaymentMethodRequest{Type: models.PaymentCashOnDelivery})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)

		_, err = checkout.Submit(context.Background(), filledCart())
		assert.ErrorIs(t, err, service.ErrInvalidTransition)

		assert.ErrorIs(t, checkout.Back(), service.ErrInvalidTransition)
	})

	t.Run("Success - Back walks review to payment to shipping", func(t *testing.T) {
		checkout := newCheckout(t, filledCart(), &stubPlacer{}, time.Second)
		toReview(t, checkout)

		require.NoError(t, checkout.Back())
		assert.Equal(t, models.StepPayment, checkout.Step())

		require.NoError(t, checkout.Back())
		assert.Equal(t, models.StepShipping, checkout.Step())

		// the address entered earlier is still there
		assert.Equal(t, "Colombo", checkout.Snapshot().ShippingAddress.City)
	})

	t.Run("Failure - Card without cvv stays on payment", func(t *testing.T) {
		checkout := newCheckout(t, filledCart(), &stubPlacer{}, time.Second)
		require.NoError(t, checkout.SubmitShipping(validAddress()))
		req := validCard()
		req.CVV = ""

		err := checkout.SubmitPayment(req)

		fields := fieldErrors(t, err)
		assert.Contains(t, fields, "cvv")
		assert.Equal(t, models.StepPayment, checkout.Step())
	})

	t.Run("Success - Prefill does not advance", func(t *testing.T) {
		checkout := newCheckout(t, filledCart(), &stubPlacer{}, time.Second)

		checkout.PrefillShipping(validAddress())

		snapshot := checkout.Snapshot()
		assert.Equal(t, models.StepShipping, snapshot.Step)
		require.NotNil(t, snapshot.ShippingAddress)
		assert.Equal(t, "Kasun Perera", snapshot.ShippingAddress.FullName)
	})
}

func TestCheckout_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Completes once and clears the cart once", func(t *testing.T) {
		// Arrange
		placer := &stubPlacer{}
		cart := filledCart()
		checkout := newCheckout(t, cart, placer, time.Second)
		toReview(t, checkout)
		clears := 0
		cart.OnChange(func(items []models.CartLineItem) {
			if len(items) == 0 {
				clears++
			}
		})

		// Act
		first, err := checkout.Submit(ctx, cart)
		require.NoError(t, err)
		second, err := checkout.Submit(ctx, cart)
		require.NoError(t, err)

		// Assert
		assert.Equal(t, models.StepCompleted, checkout.Step())
		assert.True(t, cart.IsEmpty())
		assert.Equal(t, 1, clears)
		assert.Equal(t, 1, placer.calls)
		assert.Same(t, first, second)
		assert.Equal(t, service.OrdersPath, first.Redirect)
		assert.Equal(t, "order-1", checkout.Snapshot().OrderID)
	})

	t.Run("Failure - Placer error returns to review with the cart intact", func(t *testing.T) {
		// Arrange
		placer := &stubPlacer{err: errors.New("backend down")}
		cart := filledCart()
		checkout := newCheckout(t, cart, placer, time.Second)
		toReview(t, checkout)

		// Act
		result, err := checkout.Submit(ctx, cart)

		// Assert
		assert.Nil(t, result)
		assert.Equal(t, appErrors.ErrCodeSubmissionFailed, appCode(err))
		assert.Equal(t, models.StepReview, checkout.Step())
		assert.Equal(t, 1, cart.Len())
		lastErr := checkout.Snapshot().LastError
		require.NotNil(t, lastErr)
		assert.True(t, lastErr.Retryable)

		// and a retry succeeds
		placer.setErr(nil)
		result, err = checkout.Submit(ctx, cart)
		require.NoError(t, err)
		assert.Equal(t, "order-1", result.OrderID)
		assert.Nil(t, checkout.Snapshot().LastError)
	})

	t.Run("Failure - Timeout returns to review", func(t *testing.T) {
		placer := &stubPlacer{release: make(chan struct{})}
		cart := filledCart()
		checkout := newCheckout(t, cart, placer, 20*time.Millisecond)
		toReview(t, checkout)

		_, err := checkout.Submit(ctx, cart)

		assert.Equal(t, appErrors.ErrCodeSubmissionTimeout, appCode(err))
		assert.Equal(t, models.StepReview, checkout.Step())
		assert.False(t, cart.IsEmpty())
	})

	t.Run("Failure - Everything is rejected while submitting", func(t *testing.T) {
		// Arrange
		placer := &stubPlacer{started: make(chan struct{}), release: make(chan struct{})}
		cart := filledCart()
		checkout := newCheckout(t, cart, placer, time.Second)
		toReview(t, checkout)

		done := make(chan error, 1)
		go func() {
			_, err := checkout.Submit(ctx, cart)
			done <- err
		}()
		<-placer.started

		// Act & Assert
		assert.True(t, checkout.IsSubmitting())
		_, err := checkout.Submit(ctx, cart)
		assert.ErrorIs(t, err, service.ErrSubmissionInProgress)
		assert.ErrorIs(t, checkout.Back(), service.ErrSubmissionInProgress)
		assert.ErrorIs(t, checkout.SubmitShipping(validAddress()), service.ErrSubmissionInProgress)
		assert.ErrorIs(t, checkout.SubmitPayment(validCard()), service.ErrSubmissionInProgress)

		close(placer.release)
		require.NoError(t, <-done)
		assert.Equal(t, 1, placer.calls)
		assert.Equal(t, models.StepCompleted, checkout.Step())
	})

	t.Run("Failure - Cart emptied before submit", func(t *testing.T) {
		cart := filledCart()
		checkout := newCheckout(t, cart, &stubPlacer{}, time.Second)
		toReview(t, checkout)
		cart.ClearCart()

		_, err := checkout.Submit(ctx, cart)

		assert.ErrorIs(t, err, service.ErrEmptyCart)
		assert.Equal(t, models.StepReview, checkout.Step())
	})
}
