package application

import (
	"context"

	"demo/ordersvc/internal/customer/domain"
)

type CustomerRepository interface {
	Create(ctx context.Context, c domain.Customer) (int64, error)
	Get(ctx context.Context, id int64) (domain.Customer, error)
	Update(ctx context.Context, id int64, c domain.Customer) error
	Delete(ctx context.Context, id int64) error
}
