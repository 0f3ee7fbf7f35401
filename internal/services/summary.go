package service

import "github.com/aaravmahajanofficial/storefront-checkout/internal/models"

// FlatShippingFee is charged once per non-empty cart.
const FlatShippingFee models.Money = 500

func CalculateSummary(items []models.CartLineItem) models.CartSummary {
	var summary models.CartSummary

	for _, item := range items {
		summary.Subtotal += item.Price * models.Money(item.Quantity)
		summary.ItemCount += item.Quantity
	}

	if summary.ItemCount > 0 {
		summary.Shipping = FlatShippingFee
	}

	summary.Total = summary.Subtotal + summary.Shipping

	return summary
}

// FormatSummary renders the totals for display.
func FormatSummary(summary models.CartSummary) map[string]string {
	return map[string]string{
		"subtotal": summary.Subtotal.Format(),
		"shipping": summary.Shipping.Format(),
		"total":    summary.Total.Format(),
	}
}
