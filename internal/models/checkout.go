package models

type CheckoutStep string

const (
	StepShipping   CheckoutStep = "shipping"
	StepPayment    CheckoutStep = "payment"
	StepReview     CheckoutStep = "review"
	StepSubmitting CheckoutStep = "submitting"
	StepCompleted  CheckoutStep = "completed"
)

type ShippingAddress struct {
	FullName     string `json:"fullName" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city" validate:"required"`
	PostalCode   string `json:"postalCode" validate:"required"`
	Country      string `json:"country" validate:"required"`
}

// CheckoutError is the last submission failure, shown on the review step.
type CheckoutError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type CheckoutSnapshot struct {
	Step            CheckoutStep     `json:"step"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod,omitempty"`
	Summary         CartSummary      `json:"summary"`
	LastError       *CheckoutError   `json:"lastError,omitempty"`
	OrderID         string           `json:"orderId,omitempty"`
	Redirect        string           `json:"redirect,omitempty"`
}

type OrderConfirmation struct {
	OrderID  string `json:"orderId"`
	Order    *Order `json:"order"`
	Redirect string `json:"redirect"`
}
