package application

import (
	"context"

	"demo/ordersvc/internal/order/domain"
)

// OrderRepository persists the composite order aggregate. Create and Update
// reconcile the customer and item natural keys and write the matching outbox
// event inside the same transaction; the generated ids live in the store, so
// event payloads are assembled there.
type OrderRepository interface {
	Create(ctx context.Context, o domain.Order, traceparent string) (int64, error)
	Get(ctx context.Context, id int64) (domain.Order, error)
	Update(ctx context.Context, id int64, o domain.Order, traceparent string) error
	Delete(ctx context.Context, id int64, traceparent string) error
}

// OrderCache is a read-through cache for order details. A miss is not an
// error; cache failures must never fail the request.
type OrderCache interface {
	Get(ctx context.Context, id int64) (domain.Order, bool, error)
	Set(ctx context.Context, o domain.Order) error
	Invalidate(ctx context.Context, id int64) error
}
