package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cardapio/internal/models"
	"cardapio/internal/pricing"
	"cardapio/internal/repository"
)

// Repository is the document access every catalog collection offers.
type Repository[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id primitive.ObjectID) (T, error)
	Insert(ctx context.Context, doc T) error
	Replace(ctx context.Context, id primitive.ObjectID, doc T) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type OrderRepository interface {
	Repository[models.Order]
	Find(ctx context.Context, q repository.OrderQuery) ([]models.Order, int64, error)
	MaxNumber(ctx context.Context) (int64, error)
}

// Sequence hands out increasing numbers per name.
type Sequence interface {
	Next(ctx context.Context, name string) (int64, error)
	Seed(ctx context.Context, name string, value int64) error
}

// MenuSource gives the catalog as currently visible.
type MenuSource interface {
	Menu(ctx context.Context) (pricing.Visible, error)
}
