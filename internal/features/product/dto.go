package product

// Requests

type CreateProductRequest struct {
	Title              string   `json:"title" validate:"required,min=2,max=120"`
	Description        string   `json:"description" validate:"required,min=10,max=2000"`
	Category           string   `json:"category" validate:"required"`
	Brand              string   `json:"brand"`
	SKU                string   `json:"sku"`
	Price              float64  `json:"price" validate:"required,gt=0"`
	DiscountPercentage float64  `json:"discountPercentage" validate:"min=0,max=100"`
	Stock              int      `json:"stock" validate:"min=0"`
	Tags               []string `json:"tags"`
	Images             []string `json:"images" validate:"dive,url"`
	Thumbnail          string   `json:"thumbnail" validate:"omitempty,url"`
}

type UpdateProductRequest struct {
	Title              *string  `json:"title" validate:"omitempty,min=2,max=120"`
	Description        *string  `json:"description" validate:"omitempty,min=10,max=2000"`
	Category           *string  `json:"category"`
	Brand              *string  `json:"brand"`
	SKU                *string  `json:"sku"`
	Price              *float64 `json:"price" validate:"omitempty,gt=0"`
	DiscountPercentage *float64 `json:"discountPercentage" validate:"omitempty,min=0,max=100"`
	Stock              *int     `json:"stock" validate:"omitempty,min=0"`
	Tags               []string `json:"tags"`
	Images             []string `json:"images" validate:"omitempty,dive,url"`
	Thumbnail          *string  `json:"thumbnail" validate:"omitempty,url"`
}
