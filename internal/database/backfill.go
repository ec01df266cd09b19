package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// BackfillCategoryIDs sets categoryId on products and combos that were saved
// with only a category name. Visibility is resolved by id alone, so these
// documents would otherwise never show on the menu. Names that match no
// category are left untouched and reported.
func BackfillCategoryIDs(db *mongo.Database) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cursor, err := db.Collection("categories").Find(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	var categories []struct {
		ID   primitive.ObjectID `bson:"_id"`
		Name string             `bson:"name"`
	}
	if err := cursor.All(ctx, &categories); err != nil {
		return 0, err
	}

	byName := make(map[string]primitive.ObjectID, len(categories))
	for _, cat := range categories {
		key := strings.TrimSpace(cat.Name)
		if _, dup := byName[key]; dup {
			zap.L().Warn("BackfillCategoryIDs: duplicate category name, keeping first", zap.String("name", key))
			continue
		}
		byName[key] = cat.ID
	}

	missing := bson.M{
		"category": bson.M{"$nin": bson.A{nil, ""}},
		"$or": bson.A{
			bson.M{"categoryId": bson.M{"$exists": false}},
			bson.M{"categoryId": nil},
		},
	}

	var updated int64
	for _, name := range []string{"products", "combos"} {
		coll := db.Collection(name)
		if _, err := coll.UpdateMany(ctx, bson.M{"categoryId": ""}, bson.M{"$unset": bson.M{"categoryId": ""}}); err != nil {
			return updated, err
		}
		cur, err := coll.Find(ctx, missing)
		if err != nil {
			return updated, err
		}
		var docs []struct {
			ID       primitive.ObjectID `bson:"_id"`
			Category string             `bson:"category"`
		}
		if err := cur.All(ctx, &docs); err != nil {
			return updated, err
		}

		for _, doc := range docs {
			catID, ok := byName[strings.TrimSpace(doc.Category)]
			if !ok {
				zap.L().Warn("BackfillCategoryIDs: no category for name",
					zap.String("collection", name),
					zap.String("id", doc.ID.Hex()),
					zap.String("category", doc.Category))
				continue
			}
			res, err := coll.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{"categoryId": catID}})
			if err != nil {
				return updated, err
			}
			updated += res.ModifiedCount
		}
	}

	zap.L().Info("BackfillCategoryIDs: done", zap.Int64("updated", updated))
	return updated, nil
}
