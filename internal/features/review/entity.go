package review

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is one user's rating of one product. At most one review may exist
// per (product, user) pair; the store enforces this with a unique compound
// index.
type Review struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Product            primitive.ObjectID `bson:"product" json:"product"`
	User               primitive.ObjectID `bson:"user" json:"user"`
	Rating             int                `bson:"rating" json:"rating"`
	Title              string             `bson:"title" json:"title"`
	Comment            string             `bson:"comment" json:"comment"`
	IsVerifiedPurchase bool               `bson:"isVerifiedPurchase" json:"isVerifiedPurchase"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}
