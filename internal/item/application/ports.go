package application

import (
	"context"

	"demo/ordersvc/internal/item/domain"
)

type ItemRepository interface {
	Create(ctx context.Context, it domain.Item) (int64, error)
	Get(ctx context.Context, id int64) (domain.Item, error)
	Update(ctx context.Context, id int64, it domain.Item) error
	Delete(ctx context.Context, id int64) error
}
