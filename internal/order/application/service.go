package application

import (
	"context"
	"log/slog"

	"demo/ordersvc/internal/order/domain"
)

type Service struct {
	log   *slog.Logger
	repo  OrderRepository
	cache OrderCache
}

func NewService(log *slog.Logger, repo OrderRepository, cache OrderCache) *Service {
	return &Service{log: log, repo: repo, cache: cache}
}

func (s *Service) CreateOrder(ctx context.Context, o domain.Order, traceparent string) (int64, error) {
	return s.repo.Create(ctx, o, traceparent)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	if o, ok, err := s.cache.Get(ctx, id); err != nil {
		s.log.Warn("order cache read failed", "order_id", id, "err", err)
	} else if ok {
		return o, nil
	}

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.cache.Set(ctx, o); err != nil {
		s.log.Warn("order cache write failed", "order_id", id, "err", err)
	}
	return o, nil
}

func (s *Service) UpdateOrder(ctx context.Context, id int64, o domain.Order, traceparent string) error {
	if err := s.repo.Update(ctx, id, o, traceparent); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) DeleteOrder(ctx context.Context, id int64, traceparent string) error {
	if err := s.repo.Delete(ctx, id, traceparent); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("order cache invalidate failed", "order_id", id, "err", err)
	}
}
