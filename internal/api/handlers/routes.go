package handlers

import (
	"net/http"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/telemetry"
)

func RegisterRoutes(mux *http.ServeMux, cart *CartHandler, checkout *CheckoutHandler, auth *AuthHandler) {
	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, telemetry.WithHTTPRoute(h))
	}

	handle("GET /api/v1/cart", cart.GetCart())
	handle("DELETE /api/v1/cart", cart.ClearCart())
	handle("POST /api/v1/cart/items", cart.AddItem())
	handle("PUT /api/v1/cart/items/{productId}", cart.UpdateQuantity())
	handle("DELETE /api/v1/cart/items/{productId}", cart.RemoveItem())

	handle("POST /api/v1/checkout", checkout.BeginCheckout())
	handle("GET /api/v1/checkout", checkout.GetCheckout())
	handle("PUT /api/v1/checkout/shipping", checkout.SubmitShipping())
	handle("PUT /api/v1/checkout/payment", checkout.SubmitPayment())
	handle("POST /api/v1/checkout/back", checkout.Back())
	handle("POST /api/v1/checkout/submit", checkout.PlaceOrder())

	handle("POST /api/v1/auth/login", auth.Login())
}
