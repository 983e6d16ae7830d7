package models

import "time"

// ShippingInput is the shipping address submitted at checkout
type ShippingInput struct {
	FirstName string `json:"first_name" validate:"required" msg:"First name is required"`
	LastName  string `json:"last_name" validate:"required" msg:"Last name is required"`
	Email     string `json:"email" validate:"required,email" msg:"Please enter a valid email address"`
	Phone     string `json:"phone" validate:"min=10" msg:"Please enter a valid phone number"`
	Address   string `json:"address" validate:"min=5" msg:"Address is required"`
	City      string `json:"city" validate:"required" msg:"City is required"`
	State     string `json:"state" validate:"required" msg:"State is required"`
	ZipCode   string `json:"zip_code" validate:"min=5" msg:"ZIP code is required"`
	Country   string `json:"country,omitempty"`
}

// PaymentInput is the card summary submitted at checkout. There is no status
// field: payments always start pending.
type PaymentInput struct {
	CardLastFour  string  `json:"card_last_four" validate:"len=4,number" msg:"Card last four digits must be 4 numbers"`
	CardType      string  `json:"card_type" validate:"required" msg:"Card type is required"`
	TransactionID *string `json:"transaction_id,omitempty"`
}

// CheckoutRequest represents a request to place an order from the cart
type CheckoutRequest struct {
	ShippingInfo *ShippingInput `json:"shippingInfo" validate:"required" msg:"Shipping information is required"`
	PaymentInfo  *PaymentInput  `json:"paymentInfo" validate:"required" msg:"Payment information is required"`
	OrderNote    *string        `json:"order_note,omitempty"`
}

// ShippingSummary is the shipping address echoed in the receipt
type ShippingSummary struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

// PaymentSummary never carries more than the last four digits and card type
type PaymentSummary struct {
	CardLastFour  string `json:"card_last_four"`
	CardType      string `json:"card_type"`
	PaymentStatus string `json:"payment_status"`
}

// OrderReceipt is returned by a successful checkout
type OrderReceipt struct {
	OrderID      int64           `json:"order_id"`
	TotalPrice   string          `json:"total_price"`
	Status       string          `json:"status"`
	ItemsCount   int             `json:"items_count"`
	OrderNote    *string         `json:"order_note"`
	ShippingInfo ShippingSummary `json:"shipping_info"`
	PaymentInfo  PaymentSummary  `json:"payment_info"`
}

// OrderCreated wraps the receipt with a message
type OrderCreated struct {
	Message string `json:"message"`
	*OrderReceipt
}

// OrderSummary is one row of the order history
type OrderSummary struct {
	ID         int64     `json:"id"`
	TotalPrice string    `json:"total_price"`
	Status     string    `json:"status"`
	OrderedAt  time.Time `json:"orderedAt"`
	OrderNote  *string   `json:"order_note"`
}

// OrderHistory is a page of a user's orders
type OrderHistory struct {
	Orders     []OrderSummary `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

// OrderLine is an order item with its snapshot price
type OrderLine struct {
	ProductID   int64   `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url"`
	Quantity    int     `json:"quantity"`
	Price       string  `json:"price"`
	ItemTotal   string  `json:"item_total"`
}

// ShippingInfo is the stored shipping address of an order
type ShippingInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

// PaymentInfo is the stored payment record of an order
type PaymentInfo struct {
	CardLastFour  string  `json:"card_last_four"`
	CardType      string  `json:"card_type"`
	PaymentStatus string  `json:"payment_status"`
	TransactionID *string `json:"transaction_id"`
}

// OrderDetail is the full view of one order
type OrderDetail struct {
	OrderID      int64         `json:"order_id"`
	TotalPrice   string        `json:"total_price"`
	Status       string        `json:"status"`
	OrderedAt    time.Time     `json:"orderedAt"`
	OrderNote    *string       `json:"order_note"`
	Items        []OrderLine   `json:"items"`
	ItemsCount   int           `json:"items_count"`
	ShippingInfo *ShippingInfo `json:"shipping_info"`
	PaymentInfo  *PaymentInfo  `json:"payment_info"`
}
