package service

import (
	"slices"
	"sync"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/google/uuid"
)

// CartListener receives a copy of the cart after every change.
type CartListener func(items []models.CartLineItem)

// CartStore owns the buyer's line items. It is the only place cart state is
// mutated; ProductIDs are unique and every quantity is at least 1.
type CartStore struct {
	mu        sync.Mutex
	items     []models.CartLineItem
	listeners []CartListener
	newID     func() string
}

func NewCartStore() *CartStore {
	return &CartStore{newID: uuid.NewString}
}

// AddToCart bumps the quantity of an existing line for the same product or
// appends a new line with quantity 1.
func (c *CartStore) AddToCart(candidate models.CartCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(candidate.ProductID); i >= 0 {
		c.items[i].Quantity++
	} else {
		c.items = append(c.items, candidate.LineItem(c.newID(), 1))
	}

	c.notify()
}

func (c *CartStore) RemoveFromCart(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.items)
	c.items = slices.DeleteFunc(c.items, func(item models.CartLineItem) bool {
		return item.ProductID == productID
	})

	if len(c.items) != before {
		c.notify()
	}
}

// UpdateQuantity sets the quantity in place. A quantity of zero or less
// removes the line. Unknown products are ignored.
func (c *CartStore) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveFromCart(productID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 || c.items[i].Quantity == quantity {
		return
	}

	c.items[i].Quantity = quantity
	c.notify()
}

func (c *CartStore) ClearCart() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return
	}

	c.items = nil
	c.notify()
}

// Restore replaces the cart with previously saved lines. Duplicate products
// are merged and lines without an ID get one.
func (c *CartStore) Restore(items []models.CartLineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	restored := make([]models.CartLineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 || item.ProductID == "" {
			continue
		}

		if i := slices.IndexFunc(restored, func(l models.CartLineItem) bool { return l.ProductID == item.ProductID }); i >= 0 {
			restored[i].Quantity += item.Quantity
			continue
		}

		if item.ID == "" {
			item.ID = c.newID()
		}
		restored = append(restored, item)
	}

	c.items = restored
	c.notify()
}

// OnChange registers a listener. Listeners run with the cart locked and must
// not call back into the store.
func (c *CartStore) OnChange(listener CartListener) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listeners = append(c.listeners, listener)
}

func (c *CartStore) Items() []models.CartLineItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.items)
}

func (c *CartStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

func (c *CartStore) IsEmpty() bool {
	return c.Len() == 0
}

func (c *CartStore) Summary() models.CartSummary {
	return CalculateSummary(c.Items())
}

func (c *CartStore) indexOf(productID string) int {
	return slices.IndexFunc(c.items, func(item models.CartLineItem) bool {
		return item.ProductID == productID
	})
}

func (c *CartStore) notify() {
	for _, listener := range c.listeners {
		listener(slices.Clone(c.items))
	}
}
