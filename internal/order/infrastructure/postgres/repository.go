package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"demo/ordersvc/internal/order/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// The DO UPDATE arms are no-ops; they exist so RETURNING yields the id of the
// already-present row. The item arm deliberately leaves price alone: a reused
// name keeps the price stored when it was first seen.
const (
	upsertCustomerSQL = `INSERT INTO customers (name, phone) VALUES ($1,$2)
		ON CONFLICT (name, phone) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`
	upsertItemSQL = `INSERT INTO items (name, price) VALUES ($1,$2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`
)

func (r *Repository) Create(ctx context.Context, o domain.Order, traceparent string) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var customerID int64
	if err := tx.QueryRow(ctx, upsertCustomerSQL, o.Customer, o.Phone).Scan(&customerID); err != nil {
		return 0, err
	}

	var orderID int64
	if err := tx.QueryRow(ctx, `INSERT INTO orders (ts, customer_id, notes) VALUES ($1,$2,$3) RETURNING id`,
		o.Timestamp, customerID, o.Notes).Scan(&orderID); err != nil {
		return 0, err
	}

	if err := linkItems(ctx, tx, orderID, o.Items); err != nil {
		return 0, err
	}
	if err := insertOutbox(ctx, tx, orderID, domain.EventOrderCreated, domain.NewOrderEvent(orderID, o), traceparent); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return orderID, nil
}

func (r *Repository) Update(ctx context.Context, id int64, o domain.Order, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Existence check before any mutation. FOR UPDATE pins the row so a
	// concurrent delete cannot slip between the check and the writes.
	var found int64
	if err := tx.QueryRow(ctx, `SELECT id FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&found); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET ts=$1, notes=$2 WHERE id=$3`, o.Timestamp, o.Notes, id); err != nil {
		return err
	}

	var customerID int64
	if err := tx.QueryRow(ctx, upsertCustomerSQL, o.Customer, o.Phone).Scan(&customerID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET customer_id=$1 WHERE id=$2`, customerID, id); err != nil {
		return err
	}

	// Full replacement of the item set, not a diff.
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, id); err != nil {
		return err
	}
	if err := linkItems(ctx, tx, id, o.Items); err != nil {
		return err
	}
	if err := insertOutbox(ctx, tx, id, domain.EventOrderUpdated, domain.NewOrderEvent(id, o), traceparent); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Delete(ctx context.Context, id int64, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, id); err != nil {
		return err
	}
	ct, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	if err := insertOutbox(ctx, tx, id, domain.EventOrderDeleted, domain.OrderDeleted{OrderID: id}, traceparent); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `
		SELECT o.id, o.ts, o.notes, c.name, c.phone
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id=$1`, id).
		Scan(&o.ID, &o.Timestamp, &o.Notes, &o.Customer, &o.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, err
	}

	// Items are fetched separately so an order with no items reads back with
	// an empty list rather than not-found. One entry per junction row.
	rows, err := r.pool.Query(ctx, `
		SELECT i.id, i.name, i.price
		FROM order_items oi
		JOIN items i ON i.id = oi.item_id
		WHERE oi.order_id=$1`, id)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Price); err != nil {
			return domain.Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// linkItems resolves each item by name and inserts one junction row per list
// entry. Duplicate names in the same payload produce two rows pointing at the
// same item id; upserts keep the loop sequential because every iteration
// needs the resolved id back.
func linkItems(ctx context.Context, tx pgx.Tx, orderID int64, items []domain.OrderItem) error {
	for _, it := range items {
		var itemID int64
		if err := tx.QueryRow(ctx, upsertItemSQL, it.Name, it.Price).Scan(&itemID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO order_items (order_id, item_id) VALUES ($1,$2)`, orderID, itemID); err != nil {
			return err
		}
	}
	return nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, orderID int64, eventType string, event any, traceparent string) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		VALUES ($1,$2,$3,$4,$5,'pending')`,
		"order", strconv.FormatInt(orderID, 10), eventType, payload, traceparent)
	return err
}
