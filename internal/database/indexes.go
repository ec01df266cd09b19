package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func EnsureCatalogIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, name := range []string{"products", "combos"} {
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: "categoryId", Value: 1}},
			Options: options.Index().SetName("categoryId_index"),
		}
		zap.L().Info("EnsureCatalogIndexes: creating categoryId_index", zap.String("collection", name))
		if _, err := db.Collection(name).Indexes().CreateOne(ctx, model); err != nil {
			zap.L().Warn("EnsureCatalogIndexes: index error", zap.String("collection", name), zap.Error(err))
			return err
		}
	}
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("pedidos").Indexes()

	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "pedidoNumber", Value: 1}},
			Options: options.Index().
				SetName("pedidoNumber_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"pedidoNumber": bson.M{"$gt": 0},
				}),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("status_createdAt_index"),
		},
	}

	zap.L().Info("EnsureOrderIndexes: creating order indexes")
	if _, err := indexes.CreateMany(ctx, models); err != nil {
		zap.L().Warn("EnsureOrderIndexes: index error", zap.Error(err))
		return err
	}
	zap.L().Info("EnsureOrderIndexes: order indexes created")
	return nil
}
