package cart

// Requests

type AddCartItemRequest struct {
	Product  string  `json:"product" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"min=0"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity" validate:"min=0"`
}

type UpdateCartItemRequest struct {
	Product  string `json:"product" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required"`
}
