package validation

import (
	"errors"
	"testing"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCheckout() *models.CheckoutRequest {
	return &models.CheckoutRequest{
		ShippingInfo: &models.ShippingInput{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "5551234567",
			Address:   "12 Analytical Way",
			City:      "London",
			State:     "LDN",
			ZipCode:   "12345",
		},
		PaymentInfo: &models.PaymentInput{
			CardLastFour: "4242",
			CardType:     "visa",
		},
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs Errors
	require.True(t, errors.As(err, &verrs), "expected validation.Errors, got %v", err)
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field] = fe.Message
	}
	return out
}

func TestStruct_ValidCheckout(t *testing.T) {
	assert.NoError(t, New().Struct(validCheckout()))
}

func TestStruct_CheckoutFieldRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *models.CheckoutRequest)
		field   string
		message string
	}{
		{"blank first name", func(r *models.CheckoutRequest) { r.ShippingInfo.FirstName = "   " }, "shippingInfo.first_name", "First name is required"},
		{"bad email", func(r *models.CheckoutRequest) { r.ShippingInfo.Email = "not-an-email" }, "shippingInfo.email", "Please enter a valid email address"},
		{"short phone", func(r *models.CheckoutRequest) { r.ShippingInfo.Phone = " 555123 " }, "shippingInfo.phone", "Please enter a valid phone number"},
		{"short address", func(r *models.CheckoutRequest) { r.ShippingInfo.Address = "1 A" }, "shippingInfo.address", "Address is required"},
		{"short zip", func(r *models.CheckoutRequest) { r.ShippingInfo.ZipCode = "123" }, "shippingInfo.zip_code", "ZIP code is required"},
		{"card with letter", func(r *models.CheckoutRequest) { r.PaymentInfo.CardLastFour = "12a4" }, "paymentInfo.card_last_four", "Card last four digits must be 4 numbers"},
		{"card too long", func(r *models.CheckoutRequest) { r.PaymentInfo.CardLastFour = "12345" }, "paymentInfo.card_last_four", "Card last four digits must be 4 numbers"},
		{"card decimal", func(r *models.CheckoutRequest) { r.PaymentInfo.CardLastFour = "1.23" }, "paymentInfo.card_last_four", "Card last four digits must be 4 numbers"},
		{"missing card type", func(r *models.CheckoutRequest) { r.PaymentInfo.CardType = "" }, "paymentInfo.card_type", "Card type is required"},
		{"missing shipping", func(r *models.CheckoutRequest) { r.ShippingInfo = nil }, "shippingInfo", "Shipping information is required"},
		{"missing payment", func(r *models.CheckoutRequest) { r.PaymentInfo = nil }, "paymentInfo", "Payment information is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCheckout()
			tt.mutate(req)

			fields := fieldsOf(t, New().Struct(req))
			assert.Len(t, fields, 1)
			assert.Equal(t, tt.message, fields[tt.field])
		})
	}
}

func TestStruct_ReportsEveryField(t *testing.T) {
	req := validCheckout()
	req.ShippingInfo.FirstName = ""
	req.ShippingInfo.City = ""
	req.PaymentInfo.CardLastFour = "12a4"

	fields := fieldsOf(t, New().Struct(req))

	assert.Len(t, fields, 3)
	assert.Contains(t, fields, "shippingInfo.first_name")
	assert.Contains(t, fields, "shippingInfo.city")
	assert.Contains(t, fields, "paymentInfo.card_last_four")
}

func TestStruct_TrimsInPlace(t *testing.T) {
	req := validCheckout()
	req.ShippingInfo.City = "  Paris  "
	note := "  leave at door "
	req.OrderNote = &note

	require.NoError(t, New().Struct(req))
	assert.Equal(t, "Paris", req.ShippingInfo.City)
	assert.Equal(t, "leave at door", *req.OrderNote)
}

func TestStruct_CartPayload(t *testing.T) {
	fields := fieldsOf(t, New().Struct(&models.AddToCartRequest{ProductID: 0, Quantity: 0}))

	assert.Equal(t, "Valid product ID is required", fields["product_id"])
	assert.Equal(t, "Quantity must be at least 1", fields["quantity"])
}

func TestStruct_PartialProfile(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(&models.UpdateProfileRequest{}))

	empty := ""
	assert.NoError(t, v.Struct(&models.UpdateProfileRequest{ProfileImg: &empty}))

	bad := "nope"
	fields := fieldsOf(t, v.Struct(&models.UpdateProfileRequest{Email: &bad, Name: &empty}))
	assert.Equal(t, "Please enter a valid email address", fields["email"])
	assert.Equal(t, "Name cannot be empty", fields["name"])
}

func TestStruct_RejectsNonPointer(t *testing.T) {
	err := New().Struct(models.AddToCartRequest{})
	require.Error(t, err)

	var verrs Errors
	assert.False(t, errors.As(err, &verrs))
}

func TestErrors_Error(t *testing.T) {
	err := Errors{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}
	assert.Equal(t, "validation failed: a: bad; b: worse", err.Error())
}
