package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cardapio/internal/models"
)

var ErrNotFound = errors.New("document not found")

const (
	CategoriesCollection = "categories"
	ProductsCollection   = "products"
	CombosCollection     = "combos"
	OrdersCollection     = "pedidos"
	CountersCollection   = "counters"
)

// Store is the per-collection document access shared by every repository.
type Store[T any] struct {
	coll *mongo.Collection
	sort bson.D
}

func newStore[T any](db *mongo.Database, name string, sort bson.D) *Store[T] {
	return &Store[T]{coll: db.Collection(name), sort: sort}
}

func NewCategoryStore(db *mongo.Database) *Store[models.Category] {
	return newStore[models.Category](db, CategoriesCollection, bson.D{{Key: "name", Value: 1}})
}

func NewProductStore(db *mongo.Database) *Store[models.Product] {
	return newStore[models.Product](db, ProductsCollection, bson.D{{Key: "name", Value: 1}})
}

func NewComboStore(db *mongo.Database) *Store[models.Combo] {
	return newStore[models.Combo](db, CombosCollection, bson.D{{Key: "name", Value: 1}})
}

// List returns the whole collection.
func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	opts := options.Find()
	if len(s.sort) > 0 {
		opts.SetSort(s.sort)
	}
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *Store[T]) Get(ctx context.Context, id primitive.ObjectID) (T, error) {
	var doc T
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, ErrNotFound
	}
	return doc, err
}

// Insert stores a document whose _id is already set.
func (s *Store[T]) Insert(ctx context.Context, doc T) error {
	_, err := s.coll.InsertOne(ctx, doc)
	return err
}

func (s *Store[T]) Replace(ctx context.Context, id primitive.ObjectID, doc T) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Subscribe calls onChange whenever the collection changes, until the
// returned function is called. It needs a replica set; the error is
// returned right away when change streams are unavailable, and onError
// is called when a running stream fails.
func (s *Store[T]) Subscribe(ctx context.Context, onChange func(), onError func(error)) (func(), error) {
	return Subscribe(ctx, s.coll, onChange, onError)
}
