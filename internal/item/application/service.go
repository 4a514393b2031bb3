package application

import (
	"context"

	"demo/ordersvc/internal/item/domain"
)

type Service struct {
	repo ItemRepository
}

func NewService(repo ItemRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateItem(ctx context.Context, it domain.Item) (domain.Item, error) {
	id, err := s.repo.Create(ctx, it)
	if err != nil {
		return domain.Item{}, err
	}
	it.ID = id
	return it, nil
}

func (s *Service) GetItem(ctx context.Context, id int64) (domain.Item, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateItem(ctx context.Context, id int64, it domain.Item) (domain.Item, error) {
	if err := s.repo.Update(ctx, id, it); err != nil {
		return domain.Item{}, err
	}
	it.ID = id
	return it, nil
}

func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
