package repository

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cardapio/internal/models"
)

const (
	FilterOpen   = "abertos"
	FilterClosed = "fechados"
)

var closedStatuses = bson.A{models.StatusFinalizado, models.StatusCancelado}

// OrderQuery selects a page of orders for the admin list.
type OrderQuery struct {
	Filter string
	Search string
	Page   int64
	Limit  int64
}

type OrderStore struct {
	*Store[models.Order]
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{
		Store: newStore[models.Order](db, OrdersCollection, bson.D{{Key: "createdAt", Value: -1}}),
	}
}

// Find returns one page of orders, newest first, and the number of orders
// matching the query.
func (s *OrderStore) Find(ctx context.Context, q OrderQuery) ([]models.Order, int64, error) {
	filter := orderFilter(q)

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(s.sort)
	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip((page - 1) * q.Limit).SetLimit(q.Limit)
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// MaxNumber returns the highest pedidoNumber stored, or 0.
func (s *OrderStore) MaxNumber(ctx context.Context) (int64, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "pedidoNumber", Value: -1}}).
		SetProjection(bson.M{"pedidoNumber": 1})

	var doc struct {
		PedidoNumber int64 `bson:"pedidoNumber"`
	}
	err := s.coll.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.PedidoNumber, nil
}

func orderFilter(q OrderQuery) bson.M {
	filter := bson.M{}

	switch q.Filter {
	case FilterOpen:
		filter["status"] = bson.M{"$nin": closedStatuses}
	case FilterClosed:
		filter["status"] = bson.M{"$in": closedStatuses}
	}

	search := strings.TrimSpace(q.Search)
	if search == "" {
		return filter
	}

	pattern := bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	or := bson.A{
		bson.M{"itens.name": pattern},
		bson.M{"status": pattern},
		bson.M{"note": pattern},
	}
	if n, err := strconv.ParseInt(strings.TrimPrefix(search, "#"), 10, 64); err == nil {
		or = append(or, bson.M{"pedidoNumber": n})
	}
	filter["$or"] = or
	return filter
}
