package service

import (
	"context"
	"errors"

	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/metrics"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/aaravmahajanofficial/storefront-checkout/pkg/backend"
)

// ProductCatalog resolves a product ID to what the cart needs to show.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// SubmissionGuard reports whether a session is in the middle of placing an
// order, during which its cart must not change.
type SubmissionGuard interface {
	IsSubmitting(sessionID string) bool
}

type CartService struct {
	catalog ProductCatalog
	guard   SubmissionGuard
}

func NewCartService(catalog ProductCatalog, guard SubmissionGuard) *CartService {
	return &CartService{catalog: catalog, guard: guard}
}

func (s *CartService) View(cart *CartStore) *models.CartResponse {
	items := cart.Items()
	if items == nil {
		items = []models.CartLineItem{}
	}

	summary := CalculateSummary(items)

	return &models.CartResponse{Items: items, Summary: summary, Formatted: FormatSummary(summary)}
}

func (s *CartService) AddItem(ctx context.Context, sessionID string, cart *CartStore, req *models.AddItemRequest) (*models.CartResponse, error) {
	if err := s.checkNotSubmitting(sessionID); err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, backend.ErrProductNotFound) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}
		return nil, appErrors.ThirdPartyError("Product catalog is unavailable").WithError(err)
	}

	cart.AddToCart(product.CartCandidate())
	metrics.CartMutationsTotal.WithLabelValues("add").Inc()

	return s.View(cart), nil
}

func (s *CartService) UpdateQuantity(_ context.Context, sessionID string, cart *CartStore, productID string, quantity int) (*models.CartResponse, error) {
	if err := s.checkNotSubmitting(sessionID); err != nil {
		return nil, err
	}

	cart.UpdateQuantity(productID, quantity)
	metrics.CartMutationsTotal.WithLabelValues("update").Inc()

	return s.View(cart), nil
}

func (s *CartService) RemoveItem(_ context.Context, sessionID string, cart *CartStore, productID string) (*models.CartResponse, error) {
	if err := s.checkNotSubmitting(sessionID); err != nil {
		return nil, err
	}

	cart.RemoveFromCart(productID)
	metrics.CartMutationsTotal.WithLabelValues("remove").Inc()

	return s.View(cart), nil
}

func (s *CartService) Clear(_ context.Context, sessionID string, cart *CartStore) (*models.CartResponse, error) {
	if err := s.checkNotSubmitting(sessionID); err != nil {
		return nil, err
	}

	cart.ClearCart()
	metrics.CartMutationsTotal.WithLabelValues("clear").Inc()

	return s.View(cart), nil
}

func (s *CartService) checkNotSubmitting(sessionID string) error {
	if s.guard != nil && s.guard.IsSubmitting(sessionID) {
		return submissionInProgressError()
	}

	return nil
}
