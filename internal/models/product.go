package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Size is one named price point of a product, e.g. "P" or "G".
type Size struct {
	Size  string `bson:"size" json:"size"`
	Price Amount `bson:"price" json:"price"`
}

// Product is a catalog item. Prices are either a list of sizes or one of
// the flat price fields; older documents carry any of the three.
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	CategoryID    primitive.ObjectID `bson:"categoryId,omitempty" json:"categoryId"`
	Category      string             `bson:"category,omitempty" json:"category"`
	Active        bool               `bson:"active" json:"active"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL      string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ImagePublicID string             `bson:"imagePublicId,omitempty" json:"imagePublicId,omitempty"`
	Sizes         []Size             `bson:"sizes,omitempty" json:"sizes,omitempty"`
	Price         *Amount            `bson:"price,omitempty" json:"price,omitempty"`
	FinalPrice    *Amount            `bson:"finalPrice,omitempty" json:"finalPrice,omitempty"`
	OriginalPrice *Amount            `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
