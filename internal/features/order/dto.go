package order

// Requests

type OrderItemRequest struct {
	Product  string  `json:"product" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"min=0"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity" validate:"required,min=1"`
}

type ShippingAddressRequest struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// CreateOrderRequest carries the cart-derived line items and the totals the
// client computed. The totals are stored as given, not recomputed.
type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest     `json:"orderItems" validate:"dive"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress" validate:"required"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"required"`
	ItemsPrice      float64                `json:"itemsPrice" validate:"min=0"`
	TaxPrice        float64                `json:"taxPrice" validate:"min=0"`
	ShippingPrice   float64                `json:"shippingPrice" validate:"min=0"`
	TotalPrice      float64                `json:"totalPrice" validate:"min=0"`
}

// PayOrderRequest is what the simulated payment gateway would call back with.
// An empty transaction id gets one generated server side.
type PayOrderRequest struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	UpdateTime    string `json:"updateTime"`
	EmailAddress  string `json:"emailAddress" validate:"omitempty,email"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}
