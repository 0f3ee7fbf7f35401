package service

import (
	"context"
	"errors"
	"sync"

	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/metrics"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
)

// CartPath is where a buyer with nothing to check out is sent.
const CartPath = "/cart"

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidTransition    = errors.New("invalid checkout transition")
	ErrSubmissionInProgress = errors.New("order submission in progress")
)

// Checkout walks a buyer through shipping, payment and review before the
// order is submitted. Steps only move forward through their own submit
// action and back through Back. A failed submission lands on review again
// with LastError set.
type Checkout struct {
	mu        sync.Mutex
	step      models.CheckoutStep
	shipping  *models.ShippingAddress
	payment   models.PaymentMethod
	summary   models.CartSummary
	lastErr   *models.CheckoutError
	result    *models.OrderConfirmation
	validator *CheckoutValidator
	submitter *OrderSubmitter
}

func NewCheckout(cart *CartStore, validator *CheckoutValidator, submitter *OrderSubmitter) (*Checkout, error) {
	if cart.IsEmpty() {
		return nil, emptyCartError()
	}

	metrics.CheckoutTransitionsTotal.WithLabelValues(string(models.StepShipping)).Inc()

	return &Checkout{
		step:      models.StepShipping,
		summary:   cart.Summary(),
		validator: validator,
		submitter: submitter,
	}, nil
}

func (c *Checkout) Step() models.CheckoutStep {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.step
}

func (c *Checkout) IsSubmitting() bool {
	return c.Step() == models.StepSubmitting
}

// PrefillShipping seeds the shipping form from a saved draft. It does not
// advance the checkout.
func (c *Checkout) PrefillShipping(addr models.ShippingAddress) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != models.StepShipping || c.shipping != nil {
		return
	}

	normalized := c.validator.NormalizeShipping(addr)
	c.shipping = &normalized
}

func (c *Checkout) SubmitShipping(addr models.ShippingAddress) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect(models.StepShipping); err != nil {
		return err
	}

	normalized := c.validator.NormalizeShipping(addr)
	if err := c.validator.ValidateShipping(normalized); err != nil {
		return err
	}

	c.shipping = &normalized
	c.enter(models.StepPayment)

	return nil
}

func (c *Checkout) SubmitPayment(req models.PaymentMethodRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect(models.StepPayment); err != nil {
		return err
	}

	method, err := c.validator.PaymentMethod(req)
	if err != nil {
		return err
	}

	c.payment = method
	c.enter(models.StepReview)

	return nil
}

func (c *Checkout) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.step {
	case models.StepPayment:
		c.enter(models.StepShipping)
	case models.StepReview:
		c.lastErr = nil
		c.enter(models.StepPayment)
	case models.StepSubmitting:
		return submissionInProgressError()
	default:
		return invalidTransitionError(c.step, "back")
	}

	return nil
}

// Submit places the order for the current cart. Only one submission runs
// at a time. Once completed, further calls return the same confirmation and
// leave the cart alone.
func (c *Checkout) Submit(ctx context.Context, cart *CartStore) (*models.OrderConfirmation, error) {
	c.mu.Lock()

	switch c.step {
	case models.StepCompleted:
		result := c.result
		c.mu.Unlock()
		return result, nil
	case models.StepReview:
	case models.StepSubmitting:
		c.mu.Unlock()
		return nil, submissionInProgressError()
	default:
		step := c.step
		c.mu.Unlock()
		return nil, invalidTransitionError(step, string(models.StepSubmitting))
	}

	if cart.IsEmpty() {
		c.mu.Unlock()
		return nil, emptyCartError()
	}

	req := models.OrderRequest{
		Items:           cart.Items(),
		ShippingAddress: *c.shipping,
		PaymentMethod:   c.payment,
		Summary:         cart.Summary(),
	}
	c.summary = req.Summary
	c.lastErr = nil
	c.enter(models.StepSubmitting)
	c.mu.Unlock()

	result, err := c.submitter.Submit(ctx, cart, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.lastErr = toCheckoutError(err)
		c.enter(models.StepReview)
		return nil, err
	}

	c.result = result
	c.enter(models.StepCompleted)

	return result, nil
}

func (c *Checkout) Snapshot() models.CheckoutSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := models.CheckoutSnapshot{
		Step:          c.step,
		PaymentMethod: c.payment,
		Summary:       c.summary,
	}

	if c.shipping != nil {
		addr := *c.shipping
		snapshot.ShippingAddress = &addr
	}

	if c.lastErr != nil {
		lastErr := *c.lastErr
		snapshot.LastError = &lastErr
	}

	if c.result != nil {
		snapshot.OrderID = c.result.OrderID
		snapshot.Redirect = c.result.Redirect
	}

	return snapshot
}

// expect must be called with c.mu held.
func (c *Checkout) expect(step models.CheckoutStep) error {
	if c.step == step {
		return nil
	}

	if c.step == models.StepSubmitting {
		return submissionInProgressError()
	}

	return invalidTransitionError(c.step, string(step))
}

func (c *Checkout) enter(step models.CheckoutStep) {
	c.step = step
	metrics.CheckoutTransitionsTotal.WithLabelValues(string(step)).Inc()
}

func toCheckoutError(err error) *models.CheckoutError {
	if appErr, ok := appErrors.IsAppError(err); ok {
		return &models.CheckoutError{Code: appErr.Code, Message: appErr.Message, Retryable: appErr.Retryable()}
	}

	return &models.CheckoutError{Code: appErrors.ErrCodeSubmissionFailed, Message: "Order could not be placed, please try again", Retryable: true}
}

func emptyCartError() *appErrors.AppError {
	return appErrors.EmptyCartError("Your cart is empty").
		WithRedirect(CartPath).
		WithError(ErrEmptyCart)
}

func submissionInProgressError() *appErrors.AppError {
	return appErrors.SubmissionInProgressError("Your order is being placed").
		WithError(ErrSubmissionInProgress)
}

func invalidTransitionError(from models.CheckoutStep, to string) *appErrors.AppError {
	return appErrors.InvalidTransitionError("This checkout step is not available right now").
		WithDetail("cannot go " + to + " from " + string(from)).
		WithError(ErrInvalidTransition)
}
