package service

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"strings"

	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// CheckoutValidator cleans and checks what the buyer typed into the
// checkout forms. Field errors are keyed by the JSON field name.
type CheckoutValidator struct {
	validate *validator.Validate
	policy   *bluemonday.Policy
}

func NewCheckoutValidator() *CheckoutValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &CheckoutValidator{validate: validate, policy: bluemonday.StrictPolicy()}
}

// NormalizeShipping strips markup and surrounding whitespace so that
// whitespace-only values fail the required check.
func (v *CheckoutValidator) NormalizeShipping(addr models.ShippingAddress) models.ShippingAddress {
	return models.ShippingAddress{
		FullName:     v.clean(addr.FullName),
		Phone:        v.clean(addr.Phone),
		AddressLine1: v.clean(addr.AddressLine1),
		AddressLine2: v.clean(addr.AddressLine2),
		City:         v.clean(addr.City),
		PostalCode:   v.clean(addr.PostalCode),
		Country:      v.clean(addr.Country),
	}
}

func (v *CheckoutValidator) ValidateShipping(addr models.ShippingAddress) error {
	return v.check(addr)
}

// PaymentMethod builds the selected variant and validates only the fields
// that variant carries.
func (v *CheckoutValidator) PaymentMethod(req models.PaymentMethodRequest) (models.PaymentMethod, error) {
	method, err := req.Method()
	if err != nil {
		return nil, appErrors.AddValidationError("type", "must be one of cash_on_delivery, card, bank_transfer").WithError(err)
	}

	card, ok := method.(models.Card)
	if !ok {
		return method, nil
	}

	card.CardHolderName = v.clean(card.CardHolderName)
	if err := v.check(card); err != nil {
		return nil, err
	}

	return card, nil
}

func (v *CheckoutValidator) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(v.policy.Sanitize(s)))
}

func (v *CheckoutValidator) check(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return appErrors.InternalError("Unexpected validation error").WithError(err)
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		fields[fe.Field()] = describe(fe)
	}

	return appErrors.ValidationError("Please correct the highlighted fields").
		WithFields(fields).
		WithError(err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "number":
		return "must contain digits only"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "datetime":
		return "must be in MM/YY format"
	default:
		return fmt.Sprintf("is invalid: %s=%s", fe.Tag(), fe.Param())
	}
}
