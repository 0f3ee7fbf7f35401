package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
)

var (
	ErrRecordNotFound  = errors.New("cart record not found")
	ErrMalformedRecord = errors.New("malformed cart record")
	ErrRecordTooLarge  = errors.New("cart record exceeds storage limit")
)

// CartRecordStore is the durable mirror of a single buyer's cart.
// Load returns ErrRecordNotFound when nothing has been saved yet and an error
// wrapping ErrMalformedRecord when the stored value cannot be trusted.
type CartRecordStore interface {
	Load(ctx context.Context) ([]models.CartLineItem, error)
	Save(ctx context.Context, items []models.CartLineItem) error
}

// EncodeRecord produces the flat JSON array of line items. An empty cart is
// written as [] rather than null.
func EncodeRecord(items []models.CartLineItem) ([]byte, error) {
	if items == nil {
		items = []models.CartLineItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart record: %w", err)
	}

	return data, nil
}

func DecodeRecord(data []byte) ([]models.CartLineItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: not a JSON array", ErrMalformedRecord)
	}

	var items []models.CartLineItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	for i, item := range items {
		switch {
		case item.ProductID == "":
			return nil, fmt.Errorf("%w: line %d has no productId", ErrMalformedRecord, i)
		case item.Quantity <= 0:
			return nil, fmt.Errorf("%w: line %d has quantity %d", ErrMalformedRecord, i, item.Quantity)
		case item.Price < 0:
			return nil, fmt.Errorf("%w: line %d has a negative price", ErrMalformedRecord, i)
		}
	}

	return items, nil
}
