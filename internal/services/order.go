package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/metrics"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/google/uuid"
)

// OrdersPath is where the buyer lands after a successful checkout.
const OrdersPath = "/orders"

// OrderPlacer turns a validated order request into an order.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error)
}

// SimulatedOrderPlacer stands in for a real order backend: it waits a fixed
// delay and hands back a pending order.
type SimulatedOrderPlacer struct {
	Delay time.Duration
	now   func() time.Time
}

func NewSimulatedOrderPlacer(delay time.Duration) *SimulatedOrderPlacer {
	return &SimulatedOrderPlacer{Delay: delay, now: time.Now}
}

func (p *SimulatedOrderPlacer) PlaceOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	now := p.now()

	return &models.Order{
		ID:              uuid.NewString(),
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Summary:         req.Summary,
		Status:          models.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// OrderSubmitter is the terminal checkout action. The cart is cleared only
// after the order has been placed.
type OrderSubmitter struct {
	placer  OrderPlacer
	timeout time.Duration
}

func NewOrderSubmitter(placer OrderPlacer, timeout time.Duration) *OrderSubmitter {
	return &OrderSubmitter{placer: placer, timeout: timeout}
}

func (s *OrderSubmitter) Submit(ctx context.Context, cart *CartStore, req models.OrderRequest) (*models.OrderConfirmation, error) {
	// A buyer dropping the connection must not abandon an order half way.
	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	order, err := s.placer.PlaceOrder(submitCtx, req)
	metrics.OrderSubmissionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.OrderSubmissionsTotal.WithLabelValues("timeout").Inc()
			return nil, appErrors.SubmissionTimeoutError("Placing the order took too long, please try again").WithError(err)
		}

		metrics.OrderSubmissionsTotal.WithLabelValues("failed").Inc()
		return nil, appErrors.SubmissionFailedError("Order could not be placed, please try again").WithError(err)
	}

	if order == nil || order.ID == "" {
		metrics.OrderSubmissionsTotal.WithLabelValues("failed").Inc()
		return nil, appErrors.SubmissionFailedError("Order could not be placed, please try again").
			WithError(fmt.Errorf("order placer returned no order id"))
	}

	cart.ClearCart()
	metrics.OrderSubmissionsTotal.WithLabelValues("placed").Inc()

	return &models.OrderConfirmation{OrderID: order.ID, Order: order, Redirect: OrdersPath}, nil
}
