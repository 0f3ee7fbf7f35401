package service

import (
	"context"
	"log/slog"

	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
)

type CheckoutService struct {
	registry  *CheckoutRegistry
	drafts    *DraftStore
	validator *CheckoutValidator
	submitter *OrderSubmitter
	logger    *slog.Logger
}

func NewCheckoutService(registry *CheckoutRegistry, drafts *DraftStore, validator *CheckoutValidator, submitter *OrderSubmitter, logger *slog.Logger) *CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}

	return &CheckoutService{registry: registry, drafts: drafts, validator: validator, submitter: submitter, logger: logger}
}

// Begin enters checkout for the session. An unfinished checkout is resumed;
// otherwise a new one starts on the shipping step, pre-filled from the
// saved shipping draft.
func (s *CheckoutService) Begin(ctx context.Context, sessionID string, cart *CartStore) (*models.CheckoutSnapshot, error) {
	if existing, ok := s.registry.Get(sessionID); ok {
		switch step := existing.Step(); {
		case step == models.StepSubmitting:
			return s.snapshot(existing, cart), nil
		case step != models.StepCompleted && !cart.IsEmpty():
			return s.snapshot(existing, cart), nil
		}
	}

	checkout, err := NewCheckout(cart, s.validator, s.submitter)
	if err != nil {
		s.registry.Remove(sessionID)
		return nil, err
	}

	var draft models.ShippingAddress

	found, err := s.drafts.Load(ctx, ShippingDraftForm, sessionID, &draft)
	if err != nil {
		s.logger.Warn("Ignoring unreadable shipping draft", slog.String("error", err.Error()))
	} else if found {
		checkout.PrefillShipping(draft)
	}

	s.registry.Put(sessionID, checkout)

	return s.snapshot(checkout, cart), nil
}

func (s *CheckoutService) Current(_ context.Context, sessionID string, cart *CartStore) (*models.CheckoutSnapshot, error) {
	checkout, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	return s.snapshot(checkout, cart), nil
}

func (s *CheckoutService) SubmitShipping(ctx context.Context, sessionID string, cart *CartStore, addr models.ShippingAddress) (*models.CheckoutSnapshot, error) {
	checkout, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	err = checkout.SubmitShipping(addr)

	if appErr, ok := appErrors.IsAppError(err); err == nil || (ok && appErr.Code == appErrors.ErrCodeValidation) {
		if draftErr := s.drafts.Save(ctx, ShippingDraftForm, sessionID, s.validator.NormalizeShipping(addr)); draftErr != nil {
			s.logger.Warn("Failed to save shipping draft", slog.String("error", draftErr.Error()))
		}
	}

	if err != nil {
		return nil, err
	}

	return s.snapshot(checkout, cart), nil
}

func (s *CheckoutService) SubmitPayment(_ context.Context, sessionID string, cart *CartStore, req models.PaymentMethodRequest) (*models.CheckoutSnapshot, error) {
	checkout, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if err := checkout.SubmitPayment(req); err != nil {
		return nil, err
	}

	return s.snapshot(checkout, cart), nil
}

func (s *CheckoutService) Back(_ context.Context, sessionID string, cart *CartStore) (*models.CheckoutSnapshot, error) {
	checkout, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if err := checkout.Back(); err != nil {
		return nil, err
	}

	return s.snapshot(checkout, cart), nil
}

// PlaceOrder submits the reviewed checkout. On success the cart is empty and
// the shipping draft is gone.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sessionID string, cart *CartStore) (*models.OrderConfirmation, error) {
	checkout, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	confirmation, err := checkout.Submit(ctx, cart)
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Clear(ctx, ShippingDraftForm, sessionID); err != nil {
		s.logger.Warn("Failed to clear shipping draft", slog.String("error", err.Error()))
	}

	return confirmation, nil
}

func (s *CheckoutService) lookup(sessionID string) (*Checkout, error) {
	checkout, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, appErrors.NotFoundError("No checkout in progress").WithRedirect(CartPath)
	}

	return checkout, nil
}

// snapshot shows the live cart totals until the order has been placed.
func (s *CheckoutService) snapshot(checkout *Checkout, cart *CartStore) *models.CheckoutSnapshot {
	snapshot := checkout.Snapshot()
	if snapshot.Step != models.StepCompleted && snapshot.Step != models.StepSubmitting {
		snapshot.Summary = cart.Summary()
	}

	return &snapshot
}
