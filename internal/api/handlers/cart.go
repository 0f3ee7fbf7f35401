package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	service "github.com/aaravmahajanofficial/storefront-checkout/internal/services"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	cartService *service.CartService
	loader      *CartLoader
	validator   *validator.Validate
}

func NewCartHandler(cartService *service.CartService, loader *CartLoader) *CartHandler {
	return &CartHandler{cartService: cartService, loader: loader, validator: validator.New()}
}

// GetCart godoc
//	@Summary		Get the cart
//	@Description	Returns the line items of the buyer's cart with the derived totals.
//	@Tags			Cart
//	@Produce		json
//	@Success		200	{object}	models.CartResponse		"Current cart"
//	@Failure		401	{object}	response.ErrorResponse	"Session required"
//	@Router			/cart [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		session, err := h.loader.Load(w, r)
		if err != nil {
			logger.Warn("Cart requested without a session")
			response.Error(w, err)
			return
		}
		defer session.done(w)

		response.Success(w, http.StatusOK, h.cartService.View(session.cart))
	}
}

// AddItem godoc
//	@Summary		Add a product to the cart
//	@Description	Looks the product up in the catalog and adds one unit. Adding a product already in the cart increases its quantity.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.AddItemRequest	true	"Product to add"
//	@Success		200		{object}	models.CartResponse		"Updated cart"
//	@Failure		400		{object}	response.ErrorResponse	"Invalid input"
//	@Failure		404		{object}	response.ErrorResponse	"Product not found"
//	@Failure		409		{object}	response.ErrorResponse	"An order is being placed"
//	@Failure		502		{object}	response.ErrorResponse	"Catalog unavailable"
//	@Router			/cart/items [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add to cart input")
			return
		}

		session, err := h.loader.LoadForUpdate(w, r)
		if err != nil {
			response.Error(w, err)
			return
		}
		defer session.done(w)

		cart, err := h.cartService.AddItem(r.Context(), session.id, session.cart, &req)
		if err != nil {
			logger.Error("Failed to add item to cart", slog.String("productId", req.ProductID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Item added to cart", slog.String("productId", req.ProductID), slog.Int("itemCount", cart.Summary.ItemCount))
		response.Success(w, http.StatusOK, cart)
	}
}

// UpdateQuantity godoc
//	@Summary		Set the quantity of a cart line
//	@Description	A quantity of zero or less removes the line.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			productId	path		string							true	"Product ID"
//	@Param			quantity	body		models.UpdateQuantityRequest	true	"New quantity"
//	@Success		200			{object}	models.CartResponse				"Updated cart"
//	@Failure		400			{object}	response.ErrorResponse			"Invalid input"
//	@Failure		409			{object}	response.ErrorResponse			"An order is being placed"
//	@Router			/cart/items/{productId} [put]
func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		productID := r.PathValue("productId")
		if productID == "" {
			response.Error(w, errors.BadRequestError("Product ID is required"))
			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update quantity input")
			return
		}

		session, err := h.loader.LoadForUpdate(w, r)
		if err != nil {
			response.Error(w, err)
			return
		}
		defer session.done(w)

		cart, err := h.cartService.UpdateQuantity(r.Context(), session.id, session.cart, productID, *req.Quantity)
		if err != nil {
			logger.Warn("Failed to update cart quantity", slog.String("productId", productID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// RemoveItem godoc
//	@Summary		Remove a product from the cart
//	@Tags			Cart
//	@Produce		json
//	@Param			productId	path		string					true	"Product ID"
//	@Success		200			{object}	models.CartResponse		"Updated cart"
//	@Failure		409			{object}	response.ErrorResponse	"An order is being placed"
//	@Router			/cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		session, err := h.loader.LoadForUpdate(w, r)
		if err != nil {
			response.Error(w, err)
			return
		}
		defer session.done(w)

		cart, err := h.cartService.RemoveItem(r.Context(), session.id, session.cart, r.PathValue("productId"))
		if err != nil {
			logger.Warn("Failed to remove cart item", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// ClearCart godoc
//	@Summary		Empty the cart
//	@Tags			Cart
//	@Produce		json
//	@Success		200	{object}	models.CartResponse		"Empty cart"
//	@Failure		409	{object}	response.ErrorResponse	"An order is being placed"
//	@Router			/cart [delete]
func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		session, err := h.loader.LoadForUpdate(w, r)
		if err != nil {
			response.Error(w, err)
			return
		}
		defer session.done(w)

		cart, err := h.cartService.Clear(r.Context(), session.id, session.cart)
		if err != nil {
			logger.Warn("Failed to clear cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Cart cleared")
		response.Success(w, http.StatusOK, cart)
	}
}
