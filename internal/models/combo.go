package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DiscountNone    = "none"
	DiscountPercent = "percent"
	DiscountValue   = "value"
)

// ComboItem is a snapshot of a product taken when the combo was saved.
type ComboItem struct {
	ProductID primitive.ObjectID `bson:"id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Price     Amount             `bson:"price" json:"price"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Category  string             `bson:"category,omitempty" json:"category,omitempty"`
}

// Combo bundles products. OriginalPrice and FinalPrice are computed at save
// time and are not refreshed when a product price changes later.
type Combo struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	CategoryID    primitive.ObjectID `bson:"categoryId,omitempty" json:"categoryId"`
	Category      string             `bson:"category,omitempty" json:"category"`
	Active        bool               `bson:"active" json:"active"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL      string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ImagePublicID string             `bson:"imagePublicId,omitempty" json:"imagePublicId,omitempty"`
	DiscountType  string             `bson:"discountType" json:"discountType"`
	DiscountValue Amount             `bson:"discountValue" json:"discountValue"`
	Items         []ComboItem        `bson:"items" json:"items"`
	Price         *Amount            `bson:"price,omitempty" json:"price,omitempty"`
	OriginalPrice *Amount            `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	FinalPrice    *Amount            `bson:"finalPrice,omitempty" json:"finalPrice,omitempty"`
	Orders        int                `bson:"orders" json:"orders"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
