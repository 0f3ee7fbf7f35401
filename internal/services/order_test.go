package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	service "github.com/aaravmahajanofficial/storefront-checkout/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRequest(cart *service.CartStore) models.OrderRequest {
	return models.OrderRequest{
		Items:           cart.Items(),
		ShippingAddress: validAddress(),
		PaymentMethod:   models.CashOnDelivery{},
		Summary:         cart.Summary(),
	}
}

func TestSimulatedOrderPlacer(t *testing.T) {
	t.Run("Success - Returns a pending order", func(t *testing.T) {
		// Arrange
		placer := service.NewSimulatedOrderPlacer(time.Millisecond)
		cart := filledCart()

		// Act
		order, err := placer.PlaceOrder(context.Background(), orderRequest(cart))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.NoError(t, uuid.Validate(order.ID))
		assert.Equal(t, cart.Items(), order.Items)
		assert.Equal(t, models.CashOnDelivery{}, order.PaymentMethod)
		assert.False(t, order.CreatedAt.IsZero())
	})

	t.Run("Failure - Honours cancellation", func(t *testing.T) {
		placer := service.NewSimulatedOrderPlacer(time.Hour)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		order, err := placer.PlaceOrder(ctx, orderRequest(filledCart()))

		assert.Nil(t, order)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestOrderSubmitter(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Clears the cart and redirects to orders", func(t *testing.T) {
		cart := filledCart()
		submitter := service.NewOrderSubmitter(service.NewSimulatedOrderPlacer(0), time.Second)

		confirmation, err := submitter.Submit(ctx, cart, orderRequest(cart))

		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())
		assert.Equal(t, "/orders", confirmation.Redirect)
		assert.Equal(t, confirmation.Order.ID, confirmation.OrderID)
		assert.Len(t, confirmation.Order.Items, 1)
	})

	t.Run("Failure - Does not touch the cart", func(t *testing.T) {
		cart := filledCart()
		cause := errors.New("rejected")
		submitter := service.NewOrderSubmitter(&stubPlacer{err: cause}, time.Second)

		confirmation, err := submitter.Submit(ctx, cart, orderRequest(cart))

		assert.Nil(t, confirmation)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, appErrors.ErrCodeSubmissionFailed, appCode(err))
		assert.Equal(t, 1, cart.Len())
	})

	t.Run("Failure - Timeout", func(t *testing.T) {
		cart := filledCart()
		submitter := service.NewOrderSubmitter(service.NewSimulatedOrderPlacer(time.Hour), 10*time.Millisecond)

		_, err := submitter.Submit(ctx, cart, orderRequest(cart))

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, appErrors.ErrCodeSubmissionTimeout, appCode(err))
		assert.Equal(t, 1, cart.Len())
	})

	t.Run("Success - A dropped request does not abandon the order", func(t *testing.T) {
		cart := filledCart()
		submitter := service.NewOrderSubmitter(service.NewSimulatedOrderPlacer(10*time.Millisecond), time.Second)
		reqCtx, cancel := context.WithCancel(ctx)
		cancel()

		confirmation, err := submitter.Submit(reqCtx, cart, orderRequest(cart))

		require.NoError(t, err)
		assert.NotEmpty(t, confirmation.OrderID)
	})
}
