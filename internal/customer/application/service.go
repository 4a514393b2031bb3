package application

import (
	"context"

	"demo/ordersvc/internal/customer/domain"
)

type Service struct {
	repo CustomerRepository
}

func NewService(repo CustomerRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return domain.Customer{}, err
	}
	c.ID = id
	return c, nil
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (domain.Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, c domain.Customer) (domain.Customer, error) {
	if err := s.repo.Update(ctx, id, c); err != nil {
		return domain.Customer{}, err
	}
	c.ID = id
	return c, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
