package models

// CartLineItem is one row of the cart. The JSON shape is also the durable
// cookie record, so the field names must stay as they are.
type CartLineItem struct {
	ID         string `json:"id"`
	ProductID  string `json:"productId"`
	Title      string `json:"title"`
	Price      Money  `json:"price"`
	Image      string `json:"image"`
	Condition  string `json:"condition,omitempty"`
	Location   string `json:"location"`
	SellerID   string `json:"sellerId"`
	SellerName string `json:"sellerName"`
	Quantity   int    `json:"quantity"`
}

// CartCandidate is a line item before it has an ID and a quantity.
type CartCandidate struct {
	ProductID  string `json:"productId"`
	Title      string `json:"title"`
	Price      Money  `json:"price"`
	Image      string `json:"image"`
	Condition  string `json:"condition,omitempty"`
	Location   string `json:"location"`
	SellerID   string `json:"sellerId"`
	SellerName string `json:"sellerName"`
}

func (c CartCandidate) LineItem(id string, quantity int) CartLineItem {
	return CartLineItem{
		ID:         id,
		ProductID:  c.ProductID,
		Title:      c.Title,
		Price:      c.Price,
		Image:      c.Image,
		Condition:  c.Condition,
		Location:   c.Location,
		SellerID:   c.SellerID,
		SellerName: c.SellerName,
		Quantity:   quantity,
	}
}

type CartSummary struct {
	Subtotal  Money `json:"subtotal"`
	Shipping  Money `json:"shipping"`
	Total     Money `json:"total"`
	ItemCount int   `json:"itemCount"`
}

type CartResponse struct {
	Items   []CartLineItem `json:"items"`
	Summary CartSummary    `json:"summary"`
	// Display strings for the totals, e.g. "LKR 2,500".
	Formatted map[string]string `json:"formatted"`
}

type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}
