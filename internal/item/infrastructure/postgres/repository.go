package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"demo/ordersvc/internal/item/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, it domain.Item) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO items (name, price) VALUES ($1,$2) RETURNING id`, it.Name, it.Price).Scan(&id)
	return id, err
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Item, error) {
	var it domain.Item
	err := r.pool.QueryRow(ctx, `SELECT id, name, price FROM items WHERE id=$1`, id).
		Scan(&it.ID, &it.Name, &it.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Item{}, domain.ErrItemNotFound
	}
	if err != nil {
		return domain.Item{}, err
	}
	return it, nil
}

func (r *Repository) Update(ctx context.Context, id int64, it domain.Item) error {
	ct, err := r.pool.Exec(ctx, `UPDATE items SET name=$1, price=$2 WHERE id=$3`, it.Name, it.Price, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}
