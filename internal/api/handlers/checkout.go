package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	service "github.com/aaravmahajanofficial/storefront-checkout/internal/services"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils/response"
)

type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	loader          *CartLoader
}

func NewCheckoutHandler(checkoutService *service.CheckoutService, loader *CartLoader) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, loader: loader}
}

// BeginCheckout godoc
//	@Summary		Start or resume checkout
//	@Description	Starts checkout on the shipping step, or resumes the buyer's unfinished checkout. An empty cart is refused with a redirect to the cart.
//	@Tags			Checkout
//	@Produce		json
//	@Success		200	{object}	models.CheckoutSnapshot	"Checkout state"
//	@Failure		409	{object}	response.ErrorResponse	"Cart is empty"
//	@Router			/checkout [post]
func (h *CheckoutHandler) BeginCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		session, err := h.loader.Load(w, r)
		if err != nil {
			response.Error(w, err)
			return
		}
		defer session.done(w)

		snapshot, err := h.checkoutService.Begin(r.Context(), session.id, session.cart)
		if err != nil {
			logger.Info("Checkout not started", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Checkout started", slog.String("step", string(snapshot.Step)))
		response.Success(w, http.StatusOK, snapshot)
	}
}

// GetCheckout godoc
//	@Summary		Get checkout state
//	@Tags			Checkout
//	@Produce		json
//	@Success		200	{object}	models.CheckoutSnapshot	"Checkout state"
//	@Failure		404	{object}	response.ErrorResponse	"No checkout in progress"
//	@Router			/checkout [get]
func (h *CheckoutHandler) GetCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, err := h.loader.Load(w, r)
		if err != nil {
			response.Error(w, err)
			return
		}
		defer session.done(w)

		snapshot, err := h.checkoutService.Current(r.Context(), session.id, session.cart)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, snapshot)
	}
}

// SubmitShipping godoc
//	@Summary		Submit the shipping address
//	@Description	Validates the address and moves on to payment. Every field except addressLine2 is required.
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			address	body		models.ShippingAddress		true	"Shipping address"
//	@Success		200		{object}	models.CheckoutSnapshot		"Checkout state"
//	@Failure		400		{object}	response.ErrorResponse		"Field errors"
//	@Failure		409		{object}	response.ErrorResponse		"Not on the shipping step"
//	@Router			/checkout/shipping [put]
func (h *CheckoutHandler) SubmitShipping() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.ShippingAddress
		if !utils.ParseAndValidate(r, w, &req, nil) {
			return
		}

		session, err := h.loader.Load(w, r)
		if err != nil {
			response.Error(w, err)
			return
		}
		defer session.done(w)

		snapshot, err := h.checkoutService.SubmitShipping(r.Context(), session.id, session.cart, req)
		if err != nil {
			logger.Warn("Shipping step rejected", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, snapshot)
	}
}

// SubmitPayment godoc
//	@Summary		Choose the payment method
//	@Description	Card details are required only when type is card; for other types they are ignored.
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			payment	body		models.PaymentMethodRequest	true	"Payment method"
//	@Success		200		{object}	models.CheckoutSnapshot		"Checkout state"
//	@Failure		400		{object}	response.ErrorResponse		"Field errors"
//	@Failure		409		{object}	response.ErrorResponse		"Not on the payment step"
//	@Router			/checkout/payment [put]
func (h *CheckoutHandler) SubmitPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.PaymentMethodRequest
		if !utils.ParseAndValidate(r, w, &req, nil) {
			return
		}

		session, err := h.loader.Load(w, r)
		if err != nil {
			response.Error(w, err)
			return
		}
		defer session.done(w)

		snapshot, err := h.checkoutService.SubmitPayment(r.Context(), session.id, session.cart, req)
		if err != nil {
			logger.Warn("Payment step rejected", slog.String("type", string(req.Type)), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, snapshot)
	}
}

// Back godoc
//	@Summary		Go back one checkout step
//	@Tags			Checkout
//	@Produce		json
//	@Success		200	{object}	models.CheckoutSnapshot	"Checkout state"
//	@Failure		409	{object}	response.ErrorResponse	"No previous step"
//	@Router			/checkout/back [post]
func (h *CheckoutHandler) Back() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, err := h.loader.Load(w, r)
		if err != nil {
			response.Error(w, err)
			return
		}
		defer session.done(w)

		snapshot, err := h.checkoutService.Back(r.Context(), session.id, session.cart)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, snapshot)
	}
}

// PlaceOrder godoc
//	@Summary		Place the order
//	@Description	Submits the reviewed checkout. On success the cart is emptied and the response carries the page to go to next. On failure the checkout stays on review and the cart is kept.
//	@Tags			Checkout
//	@Produce		json
//	@Success		201	{object}	models.OrderConfirmation	"Order placed"
//	@Failure		409	{object}	response.ErrorResponse		"Not on review, cart empty, or already submitting"
//	@Failure		502	{object}	response.ErrorResponse		"Order could not be placed"
//	@Failure		504	{object}	response.ErrorResponse		"Order placement timed out"
//	@Router			/checkout/submit [post]
func (h *CheckoutHandler) PlaceOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		session, err := h.loader.LoadForUpdate(w, r)
		if err != nil {
			logger.Warn("Order not started", slog.Any("error", err))
			response.Error(w, err)
			return
		}
		defer session.done(w)

		confirmation, err := h.checkoutService.PlaceOrder(r.Context(), session.id, session.cart)
		if err != nil {
			logger.Error("Failed to place order", slog.Any("error", err))
			response.Error(w, err)
			return
		}
		session.orderPlaced()

		logger.Info("Order placed", slog.String("orderId", confirmation.OrderID))
		response.Success(w, http.StatusCreated, confirmation)
	}
}
