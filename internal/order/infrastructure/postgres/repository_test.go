//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"demo/ordersvc/internal/order/domain"
	orderpg "demo/ordersvc/internal/order/infrastructure/postgres"
	"demo/ordersvc/migrations"
	"demo/ordersvc/pkg/logging"
	"demo/ordersvc/test/integration"
)

var pool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

// run exists so deferred teardown survives the os.Exit in TestMain.
func run(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	env, err := integration.Setup(ctx)
	if err != nil {
		panic(err)
	}
	defer env.Teardown(ctx)

	if err := migrateUp(env.PGURL); err != nil {
		panic(err)
	}
	pool, err = pgxpool.New(ctx, env.PGURL)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	return m.Run()
}

func migrateUp(pgURL string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}
	url := "pgx5://" + strings.TrimPrefix(pgURL, "postgres://")
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func newRepo(t *testing.T) *orderpg.Repository {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`TRUNCATE order_items, orders, items, customers, outbox RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return orderpg.NewRepository(logging.New("error"), pool)
}

func count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT count(*) FROM `+table).Scan(&n))
	return n
}

func TestCreateAndGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, domain.Order{
		Timestamp: 1000,
		Customer:  "Ann",
		Phone:     "555-1",
		Notes:     "",
		Items:     []domain.OrderItem{{Name: "Cola", Price: 2.5}},
	}, "")
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Ann", got.Customer)
	require.Equal(t, "555-1", got.Phone)
	require.Equal(t, int64(1000), got.Timestamp)
	require.Len(t, got.Items, 1)
	require.Equal(t, "Cola", got.Items[0].Name)
	require.Equal(t, 2.5, got.Items[0].Price)
}

func TestCustomerAndItemReuse(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, domain.Order{
		Timestamp: 1000, Customer: "Ann", Phone: "555-1",
		Items: []domain.OrderItem{{Name: "Cola", Price: 2.5}},
	}, "")
	require.NoError(t, err)

	// Same customer key and item name, different price: both resolve to the
	// existing rows; the stored price wins.
	second, err := repo.Create(ctx, domain.Order{
		Timestamp: 2000, Customer: "Ann", Phone: "555-1",
		Items: []domain.OrderItem{{Name: "Cola", Price: 9.9}},
	}, "")
	require.NoError(t, err)

	require.Equal(t, 1, count(t, "customers"))
	require.Equal(t, 1, count(t, "items"))

	var c1, c2 int64
	require.NoError(t, pool.QueryRow(ctx, `SELECT customer_id FROM orders WHERE id=$1`, first).Scan(&c1))
	require.NoError(t, pool.QueryRow(ctx, `SELECT customer_id FROM orders WHERE id=$1`, second).Scan(&c2))
	require.Equal(t, c1, c2)

	got, err := repo.Get(ctx, second)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.Equal(t, 2.5, got.Items[0].Price)
}

func TestDifferentPhoneIsDifferentCustomer(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.Order{Timestamp: 1, Customer: "Ann", Phone: "555-1"}, "")
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.Order{Timestamp: 2, Customer: "Ann", Phone: "555-2"}, "")
	require.NoError(t, err)

	require.Equal(t, 2, count(t, "customers"))
}

func TestDuplicateItemNamesInOnePayload(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, domain.Order{
		Timestamp: 1000, Customer: "Ann", Phone: "555-1",
		Items: []domain.OrderItem{{Name: "Cola", Price: 2.5}, {Name: "Cola", Price: 2.5}},
	}, "")
	require.NoError(t, err)

	require.Equal(t, 1, count(t, "items"))
	require.Equal(t, 2, count(t, "order_items"))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	require.Equal(t, got.Items[0].ID, got.Items[1].ID)
}

func TestGetOrderWithoutItems(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, domain.Order{Timestamp: 1000, Customer: "Ann", Phone: "555-1"}, "")
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Empty(t, got.Items)
}

func TestUpdateReplacesItemSet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, domain.Order{
		Timestamp: 1000, Customer: "Ann", Phone: "555-1",
		Items: []domain.OrderItem{{Name: "A", Price: 1}, {Name: "B", Price: 2}},
	}, "")
	require.NoError(t, err)

	err = repo.Update(ctx, id, domain.Order{
		Timestamp: 2000, Customer: "Bob", Phone: "555-9", Notes: "rush",
		Items: []domain.OrderItem{{Name: "C", Price: 3}},
	}, "")
	require.NoError(t, err)

	require.Equal(t, 1, count(t, "order_items"))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(2000), got.Timestamp)
	require.Equal(t, "rush", got.Notes)
	require.Equal(t, "Bob", got.Customer)
	require.Equal(t, "555-9", got.Phone)
	require.Len(t, got.Items, 1)
	require.Equal(t, "C", got.Items[0].Name)

	// A and B stay in items; orphaned items are never auto-deleted.
	require.Equal(t, 3, count(t, "items"))
}

func TestCreateRollsBackOnItemFailure(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	// Third of four items violates the price check constraint.
	_, err := repo.Create(ctx, domain.Order{
		Timestamp: 1000, Customer: "Ann", Phone: "555-1",
		Items: []domain.OrderItem{
			{Name: "A", Price: 1},
			{Name: "B", Price: 2},
			{Name: "C", Price: -5},
			{Name: "D", Price: 4},
		},
	}, "")
	require.Error(t, err)

	require.Equal(t, 0, count(t, "orders"))
	require.Equal(t, 0, count(t, "order_items"))
	require.Equal(t, 0, count(t, "items"))
	require.Equal(t, 0, count(t, "customers"))
	require.Equal(t, 0, count(t, "outbox"))
}

func TestUpdateRollsBackEverything(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, domain.Order{
		Timestamp: 1000, Customer: "Ann", Phone: "555-1",
		Items: []domain.OrderItem{{Name: "A", Price: 1}},
	}, "")
	require.NoError(t, err)

	err = repo.Update(ctx, id, domain.Order{
		Timestamp: 2000, Customer: "Ann", Phone: "555-1", Notes: "changed",
		Items: []domain.OrderItem{{Name: "Bad", Price: -1}},
	}, "")
	require.Error(t, err)

	// The earlier writes in the same transaction are rolled back too.
	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(1000), got.Timestamp)
	require.Equal(t, "", got.Notes)
	require.Len(t, got.Items, 1)
	require.Equal(t, "A", got.Items[0].Name)
}

func TestUpdateLosesRaceWithDelete(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, domain.Order{
		Timestamp: 1000, Customer: "Ann", Phone: "555-1",
	}, "")
	require.NoError(t, err)

	// Delete the order in an open transaction so its row lock is held while
	// the update's existence check runs.
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, id)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- repo.Update(ctx, id, domain.Order{
			Timestamp: 2000, Customer: "Bob", Phone: "555-2",
		}, "")
	}()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, tx.Commit(ctx))

	require.ErrorIs(t, <-done, domain.ErrOrderNotFound)
	require.Equal(t, 0, count(t, "orders"))
	// The losing update writes nothing, not even its upserted customer.
	require.Equal(t, 1, count(t, "customers"))
}

func TestNotFound(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, 12345)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	err = repo.Update(ctx, 12345, domain.Order{Timestamp: 1, Customer: "X", Phone: "1"}, "")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	require.Equal(t, 0, count(t, "customers"))

	err = repo.Delete(ctx, 12345, "")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestDeleteRemovesOrderAndLinks(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, domain.Order{
		Timestamp: 1000, Customer: "Ann", Phone: "555-1",
		Items: []domain.OrderItem{{Name: "A", Price: 1}, {Name: "B", Price: 2}},
	}, "")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id, ""))

	require.Equal(t, 0, count(t, "orders"))
	require.Equal(t, 0, count(t, "order_items"))
	// Items and customer survive the order.
	require.Equal(t, 2, count(t, "items"))
	require.Equal(t, 1, count(t, "customers"))
}

func TestOutboxLifecycle(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, domain.Order{
		Timestamp: 1000, Customer: "Ann", Phone: "555-1",
		Items: []domain.OrderItem{{Name: "Cola", Price: 2.5}},
	}, "00-abc-def-01")
	require.NoError(t, err)

	store := orderpg.NewOutboxStore(logging.New("error"), pool)
	events, err := store.LockBatch(ctx, "test-relay", 10, 5*time.Second)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "OrderCreated", events[0].Type)
	require.Equal(t, "order", events[0].AggregateType)
	require.Equal(t, "00-abc-def-01", events[0].Traceparent)
	require.Equal(t, strconv.FormatInt(id, 10), events[0].AggregateID)
	require.Contains(t, string(events[0].Payload), `"Ann"`)

	// A second lock sees nothing while the batch is in progress.
	again, err := store.LockBatch(ctx, "other-relay", 10, 5*time.Second)
	require.NoError(t, err)
	require.Empty(t, again)

	require.NoError(t, store.MarkSent(ctx, []int64{events[0].ID}))
	var status string
	require.NoError(t, pool.QueryRow(ctx, `SELECT status FROM outbox WHERE id=$1`, events[0].ID).Scan(&status))
	require.Equal(t, "sent", status)
}

func TestOutboxRedeliversAfterFailure(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.Order{
		Timestamp: 1000, Customer: "Ann", Phone: "555-1",
	}, "")
	require.NoError(t, err)

	store := orderpg.NewOutboxStore(logging.New("error"), pool)
	events, err := store.LockBatch(ctx, "test-relay", 10, 5*time.Second)
	require.NoError(t, err)
	require.Len(t, events, 1)
	id := events[0].ID

	// A transient dispatch failure requeues the row for the next poll.
	require.NoError(t, store.MarkFailed(ctx, id, "broker down"))
	events, err = store.LockBatch(ctx, "test-relay", 10, 5*time.Second)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, id, events[0].ID)

	var status string
	var retries int
	var lastError string

	// Failing repeatedly exhausts the retry budget and parks the row.
	for i := 0; i < 10; i++ {
		require.NoError(t, store.MarkFailed(ctx, id, "still down"))
		events, err = store.LockBatch(ctx, "test-relay", 10, 5*time.Second)
		require.NoError(t, err)
		if len(events) == 0 {
			break
		}
	}
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT status, retry_count, last_error FROM outbox WHERE id=$1`, id).
		Scan(&status, &retries, &lastError))
	require.Equal(t, "failed", status)
	require.Equal(t, 5, retries)
	require.Equal(t, "still down", lastError)

	// A parked row stays invisible to the relay.
	events, err = store.LockBatch(ctx, "test-relay", 10, 5*time.Second)
	require.NoError(t, err)
	require.Empty(t, events)
}
