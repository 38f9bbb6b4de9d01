package product

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title              string             `bson:"title" json:"title"`
	Description        string             `bson:"description" json:"description"`
	Category           string             `bson:"category" json:"category"`
	Brand              string             `bson:"brand,omitempty" json:"brand,omitempty"`
	SKU                string             `bson:"sku,omitempty" json:"sku,omitempty"`
	Price              float64            `bson:"price" json:"price"`
	DiscountPercentage float64            `bson:"discountPercentage" json:"discountPercentage"`

	// Rating and NumReviews are derived from the review set; they are only
	// written by the review feature's recompute.
	Rating     float64 `bson:"rating" json:"rating"`
	NumReviews int     `bson:"numReviews" json:"numReviews"`

	Stock     int                `bson:"stock" json:"stock"`
	Tags      []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Images    []string           `bson:"images,omitempty" json:"images,omitempty"`
	Thumbnail string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	CreatedBy primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
