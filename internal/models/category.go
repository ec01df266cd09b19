package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Active        bool               `bson:"active" json:"active"`
	ImageURL      string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ImagePublicID string             `bson:"imagePublicId,omitempty" json:"imagePublicId,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
