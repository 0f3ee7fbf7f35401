package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type PaymentType string

const (
	PaymentCashOnDelivery PaymentType = "cash_on_delivery"
	PaymentCard           PaymentType = "card"
	PaymentBankTransfer   PaymentType = "bank_transfer"
)

// PaymentMethod is a closed union: CashOnDelivery, BankTransfer or Card.
// Only Card carries fields.
type PaymentMethod interface {
	Type() PaymentType
	isPaymentMethod()
}

type CashOnDelivery struct{}

func (CashOnDelivery) Type() PaymentType { return PaymentCashOnDelivery }
func (CashOnDelivery) isPaymentMethod()  {}

func (c CashOnDelivery) MarshalJSON() ([]byte, error) {
	return marshalPaymentType(c.Type())
}

type BankTransfer struct{}

func (BankTransfer) Type() PaymentType { return PaymentBankTransfer }
func (BankTransfer) isPaymentMethod()  {}

func (b BankTransfer) MarshalJSON() ([]byte, error) {
	return marshalPaymentType(b.Type())
}

type Card struct {
	CardHolderName string `json:"cardHolderName" validate:"required"`
	CardNumber     string `json:"cardNumber" validate:"required,number,min=12,max=19"`
	ExpiryDate     string `json:"expiryDate" validate:"required,datetime=01/06"`
	CVV            string `json:"cvv" validate:"required,number,min=3,max=4"`
}

func (Card) Type() PaymentType { return PaymentCard }
func (Card) isPaymentMethod()  {}

func (c Card) Last4() string {
	if len(c.CardNumber) <= 4 {
		return c.CardNumber
	}

	return c.CardNumber[len(c.CardNumber)-4:]
}

// MarshalJSON never emits the full card number or the CVV.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type           PaymentType `json:"type"`
		CardHolderName string      `json:"cardHolderName"`
		Last4          string      `json:"last4"`
		ExpiryDate     string      `json:"expiryDate"`
	}{c.Type(), c.CardHolderName, c.Last4(), c.ExpiryDate})
}

func marshalPaymentType(t PaymentType) ([]byte, error) {
	return json.Marshal(struct {
		Type PaymentType `json:"type"`
	}{t})
}

// PaymentMethodRequest is the flat payment form as the browser posts it.
type PaymentMethodRequest struct {
	Type           PaymentType `json:"type"`
	CardHolderName string      `json:"cardHolderName,omitempty"`
	CardNumber     string      `json:"cardNumber,omitempty"`
	ExpiryDate     string      `json:"expiryDate,omitempty"`
	CVV            string      `json:"cvv,omitempty"`
}

// Method builds the variant selected by Type. Card fields are read only for
// the card variant; for every other type they are dropped.
func (r PaymentMethodRequest) Method() (PaymentMethod, error) {
	switch r.Type {
	case PaymentCashOnDelivery:
		return CashOnDelivery{}, nil
	case PaymentBankTransfer:
		return BankTransfer{}, nil
	case PaymentCard:
		return Card{
			CardHolderName: strings.TrimSpace(r.CardHolderName),
			CardNumber:     strings.Join(strings.Fields(r.CardNumber), ""),
			ExpiryDate:     strings.TrimSpace(r.ExpiryDate),
			CVV:            strings.TrimSpace(r.CVV),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported payment type %q", r.Type)
	}
}
