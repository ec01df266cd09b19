package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderSequence is the name of the counter behind pedidoNumber.
const OrderSequence = "pedidos"

// MongoCounter hands out sequence numbers from the counters collection.
// Each call is a single atomic $inc, so concurrent orders never share a
// number.
type MongoCounter struct {
	coll *mongo.Collection
}

func NewMongoCounter(db *mongo.Database) *MongoCounter {
	return &MongoCounter{coll: db.Collection(CountersCollection)}
}

func (m *MongoCounter) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := m.coll.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s: %w", name, err)
	}
	return doc.Seq, nil
}

// Seed raises the counter to at least value. It never lowers it.
func (m *MongoCounter) Seed(ctx context.Context, name string, value int64) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$max": bson.M{"seq": value}},
		options.Update().SetUpsert(true),
	)
	return err
}
