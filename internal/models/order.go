package models

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type Order struct {
	ID              string          `json:"id"`
	Items           []CartLineItem  `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	Summary         CartSummary     `json:"summary"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderRequest is what the checkout hands to the order placer once every
// step has been validated.
type OrderRequest struct {
	Items           []CartLineItem
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	Summary         CartSummary
}
