package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	service "github.com/aaravmahajanofficial/storefront-checkout/internal/services"
	"github.com/aaravmahajanofficial/storefront-checkout/pkg/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if product, ok := args.Get(0).(*models.Product); ok {
		return product, args.Error(1)
	}
	return nil, args.Error(1)
}

type guardFunc func(sessionID string) bool

func (f guardFunc) IsSubmitting(sessionID string) bool { return f(sessionID) }

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()
	lamp := &models.Product{ID: "p1", Title: "Lamp", Price: 1000, Images: []string{"lamp.jpg", "lamp-2.jpg"}, SellerID: "s1", SellerName: "Ama"}

	t.Run("Success - Adds the catalog product", func(t *testing.T) {
		// Arrange
		catalog := new(mockCatalog)
		catalog.On("GetProduct", mock.Anything, "p1").Return(lamp, nil).Twice()
		cartService := service.NewCartService(catalog, nil)
		cart := service.NewCartStore()

		// Act
		_, err := cartService.AddItem(ctx, "s1", cart, &models.AddItemRequest{ProductID: "p1"})
		require.NoError(t, err)
		resp, err := cartService.AddItem(ctx, "s1", cart, &models.AddItemRequest{ProductID: "p1"})

		// Assert
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "lamp.jpg", resp.Items[0].Image)
		assert.Equal(t, 2, resp.Items[0].Quantity)
		assert.Equal(t, models.CartSummary{Subtotal: 2000, Shipping: 500, Total: 2500, ItemCount: 2}, resp.Summary)
		assert.Equal(t, "LKR 2,500", resp.Formatted["total"])
		catalog.AssertExpectations(t)
	})

	t.Run("Failure - Unknown product", func(t *testing.T) {
		catalog := new(mockCatalog)
		catalog.On("GetProduct", mock.Anything, "nope").Return(nil, fmt.Errorf("lookup: %w", backend.ErrProductNotFound)).Once()
		cartService := service.NewCartService(catalog, nil)
		cart := service.NewCartStore()

		_, err := cartService.AddItem(ctx, "s1", cart, &models.AddItemRequest{ProductID: "nope"})

		assert.Equal(t, appErrors.ErrCodeNotFound, appCode(err))
		assert.True(t, cart.IsEmpty())
	})

	t.Run("Failure - Catalog unavailable", func(t *testing.T) {
		catalog := new(mockCatalog)
		catalog.On("GetProduct", mock.Anything, "p1").Return(nil, errors.New("connection refused")).Once()
		cartService := service.NewCartService(catalog, nil)

		_, err := cartService.AddItem(ctx, "s1", service.NewCartStore(), &models.AddItemRequest{ProductID: "p1"})

		assert.Equal(t, appErrors.ErrCodeThirdPartyError, appCode(err))
	})

	t.Run("Failure - Rejected while the order is being placed", func(t *testing.T) {
		catalog := new(mockCatalog)
		cartService := service.NewCartService(catalog, guardFunc(func(id string) bool { return id == "s1" }))

		_, err := cartService.AddItem(ctx, "s1", service.NewCartStore(), &models.AddItemRequest{ProductID: "p1"})

		assert.ErrorIs(t, err, service.ErrSubmissionInProgress)
		catalog.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
	})
}

func TestCartService_Mutations(t *testing.T) {
	ctx := context.Background()
	cartService := service.NewCartService(new(mockCatalog), guardFunc(func(string) bool { return false }))

	t.Run("Success - Update, remove and clear", func(t *testing.T) {
		cart := service.NewCartStore()
		cart.AddToCart(candidate("p1", 100))
		cart.AddToCart(candidate("p2", 300))

		resp, err := cartService.UpdateQuantity(ctx, "s1", cart, "p1", 4)
		require.NoError(t, err)
		assert.Equal(t, models.Money(700), resp.Summary.Subtotal)

		resp, err = cartService.UpdateQuantity(ctx, "s1", cart, "p2", 0)
		require.NoError(t, err)
		assert.Len(t, resp.Items, 1)

		resp, err = cartService.RemoveItem(ctx, "s1", cart, "p1")
		require.NoError(t, err)
		assert.Empty(t, resp.Items)
		assert.Equal(t, models.CartSummary{}, resp.Summary)

		resp, err = cartService.Clear(ctx, "s1", cart)
		require.NoError(t, err)
		assert.NotNil(t, resp.Items)
	})

	t.Run("Failure - Blocked while submitting", func(t *testing.T) {
		blocked := service.NewCartService(new(mockCatalog), guardFunc(func(string) bool { return true }))
		cart := filledCart()

		_, err := blocked.Clear(ctx, "s1", cart)

		assert.ErrorIs(t, err, service.ErrSubmissionInProgress)
		assert.Equal(t, 1, cart.Len())
	})
}
