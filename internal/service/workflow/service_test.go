package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

var testNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	seq   atomic.Int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, ctx: context.Background(), store: memory.NewStore()}
}

func (f *fixture) service(opts ...Option) *Service {
	base := []Option{
		WithLogger(log.WithField("test", f.t.Name())),
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { return fmt.Sprintf("order-%d", f.seq.Add(1)) }),
	}
	return New(f.store, append(base, opts...)...)
}

func (f *fixture) product(id string, stock int64) {
	f.t.Helper()
	require.NoError(f.t, f.store.Products().Create(f.ctx, domain.Product{
		ID:         id,
		Name:       "name-" + id,
		PriceMinor: 100,
		Quantity:   stock,
		Category:   domain.ProductCategoryOther,
		CreatedAt:  testNow,
		UpdatedAt:  testNow,
	}))
}

// cart создаёт корзину; lines — пары productID, quantity.
func (f *fixture) cart(id string, lines ...any) {
	f.t.Helper()
	cart := domain.Cart{ID: id, CreatedAt: testNow, UpdatedAt: testNow}
	require.NoError(f.t, f.store.Carts().Create(f.ctx, cart))
	f.addLines(id, lines...)
}

func (f *fixture) addLines(id string, lines ...any) {
	f.t.Helper()
	cart, err := f.store.Carts().Get(f.ctx, id)
	require.NoError(f.t, err)
	for i := 0; i < len(lines); i += 2 {
		productID := lines[i].(string)
		_, err := cart.AddLine(productID, int64(lines[i+1].(int)), fmt.Sprintf("%s-line-%d", id, f.seq.Add(1)), testNow)
		require.NoError(f.t, err)
	}
	require.NoError(f.t, f.store.Carts().Save(f.ctx, cart))
}

func (f *fixture) stock(id string) int64 {
	f.t.Helper()
	qty, err := f.store.Products().Stock(f.ctx, id)
	require.NoError(f.t, err)
	return qty
}

func (f *fixture) pendingOutbox() []domain.OutboxMessage {
	f.t.Helper()
	msgs, err := f.store.Outbox().PullPending(f.ctx, 100)
	require.NoError(f.t, err)
	return msgs
}

func TestPlace_ExactStockSucceedsAndOneMoreFails(t *testing.T) {
	f := newFixture(t)
	f.product("A", 5)
	f.cart("exact", "A", 5)
	f.cart("over", "A", 6)
	svc := f.service()

	_, err := svc.Place(f.ctx, "over")
	var shortage *domain.InsufficientStockError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, domain.InsufficientStockError{ProductID: "A", Requested: 6, Available: 5}, *shortage)
	assert.Equal(t, int64(5), f.stock("A"))

	order, err := svc.Place(f.ctx, "exact")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAwaitingPayment, order.Status)
	assert.Equal(t, int64(0), f.stock("A"))
}

func TestPlace_AllOrNothingAcrossLines(t *testing.T) {
	f := newFixture(t)
	f.product("A", 10)
	f.product("B", 1)
	f.cart("c", "A", 3, "B", 2)
	svc := f.service()

	_, err := svc.Place(f.ctx, "c")
	require.True(t, domain.IsInsufficientStock(err))

	assert.Equal(t, int64(10), f.stock("A"))
	assert.Equal(t, int64(1), f.stock("B"))
	cart, err := f.store.Carts().Get(f.ctx, "c")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 2)
	assert.Empty(t, f.pendingOutbox())
}

func TestPlace_ReportsEveryShortage(t *testing.T) {
	f := newFixture(t)
	f.product("A", 1)
	f.product("B", 1)
	f.cart("c", "A", 2, "B", 3)

	_, err := f.service().Place(f.ctx, "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product A")
	assert.Contains(t, err.Error(), "product B")
}

func TestPlace_ClearsCartAndSnapshotIsDetached(t *testing.T) {
	f := newFixture(t)
	f.product("A", 10)
	f.product("B", 10)
	f.cart("c", "A", 2, "B", 1)
	svc := f.service()

	order, err := svc.Place(f.ctx, "c")
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(300), order.AmountMinor)

	cart, err := f.store.Carts().Get(f.ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	f.addLines("c", "A", 7)
	stored, err := svc.Get(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Items, stored.Items)
	assert.Equal(t, int64(8), f.stock("A"))
	assert.Equal(t, int64(9), f.stock("B"))
}

func TestPlace_EmptyCartCreatesEmptyOrder(t *testing.T) {
	f := newFixture(t)
	f.cart("empty")

	order, err := f.service().Place(f.ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, order.Items)
	assert.Zero(t, order.AmountMinor)
}

func TestPlace_NotFound(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	_, err := svc.Place(f.ctx, "missing")
	require.ErrorIs(t, err, domain.ErrCartNotFound)

	_, err = svc.Place(f.ctx, "")
	require.ErrorIs(t, err, domain.ErrCartIDRequired)
}

func TestPlace_EnqueuesEventAndTimeline(t *testing.T) {
	f := newFixture(t)
	f.product("A", 3)
	f.cart("c", "A", 1)
	svc := f.service()

	order, err := svc.Place(f.ctx, "c")
	require.NoError(t, err)

	msgs := f.pendingOutbox()
	require.Len(t, msgs, 1)
	assert.Equal(t, "order.placed", msgs[0].EventType)
	assert.Equal(t, order.ID, msgs[0].AggregateID)

	events, err := svc.Timeline(f.ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.TimelineOrderPlaced, events[0].Type)
	assert.Equal(t, testNow, events[0].Occurred)
}

// Сценарий: остаток 4, первая корзина забирает всё, второй не хватает одной единицы.
func TestPlace_SecondCartSeesDepletedStock(t *testing.T) {
	f := newFixture(t)
	f.product("A", 4)
	f.cart("C1", "A", 4)
	f.cart("C2", "A", 1)
	svc := f.service()

	o1, err := svc.Place(f.ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "C1", o1.CartID)
	assert.Equal(t, int64(0), f.stock("A"))

	_, err = svc.Place(f.ctx, "C2")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	c1, err := f.store.Carts().Get(f.ctx, "C1")
	require.NoError(t, err)
	assert.Empty(t, c1.Lines)
}

func TestPlace_ConcurrentPlacementsNeverOversell(t *testing.T) {
	f := newFixture(t)
	const stock, buyers = 5, 20
	f.product("A", stock)
	for i := 0; i < buyers; i++ {
		f.cart(fmt.Sprintf("cart-%d", i), "A", 1)
	}
	svc := f.service()

	var (
		wg           sync.WaitGroup
		placed       atomic.Int64
		insufficient atomic.Int64
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Place(f.ctx, fmt.Sprintf("cart-%d", i))
			switch {
			case err == nil:
				placed.Add(1)
			case domain.IsInsufficientStock(err):
				insufficient.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(stock), placed.Load())
	assert.Equal(t, int64(buyers-stock), insufficient.Load())
	assert.Equal(t, int64(0), f.stock("A"))
}

func TestPay_TransitionsOnceThenNoop(t *testing.T) {
	f := newFixture(t)
	f.product("A", 1)
	f.cart("c", "A", 1)
	svc := f.service()
	order, err := svc.Place(f.ctx, "c")
	require.NoError(t, err)

	paid, err := svc.Pay(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, paid.Status)

	again, err := svc.Pay(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, again.Status)
	assert.Equal(t, paid.Version, again.Version)

	types := make([]string, 0)
	for _, msg := range f.pendingOutbox() {
		types = append(types, msg.EventType)
	}
	assert.Equal(t, []string{"order.placed", "order.paid"}, types)

	_, err = svc.Pay(f.ctx, "missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestFinish_RequiresDelivered(t *testing.T) {
	f := newFixture(t)
	f.product("A", 2)
	f.cart("c", "A", 1)
	svc := f.service()
	order, err := svc.Place(f.ctx, "c")
	require.NoError(t, err)

	err = svc.Finish(f.ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrBadOrderState)
	_, err = svc.Get(f.ctx, order.ID)
	require.NoError(t, err)

	_, err = svc.Pay(f.ctx, order.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Finish(f.ctx, order.ID))

	_, err = svc.Get(f.ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	require.ErrorIs(t, svc.Finish(f.ctx, order.ID), domain.ErrOrderNotFound)

	events, err := svc.Timeline(f.ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, domain.TimelineOrderFinished, events[2].Type)
}

func TestCancel_DeletesInAnyStatusWithoutRestock(t *testing.T) {
	f := newFixture(t)
	f.product("A", 5)
	f.cart("c1", "A", 2)
	f.cart("c2", "A", 1)
	svc := f.service()

	awaiting, err := svc.Place(f.ctx, "c1")
	require.NoError(t, err)
	delivered, err := svc.Place(f.ctx, "c2")
	require.NoError(t, err)
	_, err = svc.Pay(f.ctx, delivered.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(f.ctx, awaiting.ID, "changed mind"))
	require.NoError(t, svc.Cancel(f.ctx, delivered.ID, ""))

	for _, id := range []string{awaiting.ID, delivered.ID} {
		_, err := svc.Get(f.ctx, id)
		require.ErrorIs(t, err, domain.ErrOrderNotFound)
	}
	assert.Equal(t, int64(2), f.stock("A"))
	require.ErrorIs(t, svc.Cancel(f.ctx, awaiting.ID, ""), domain.ErrOrderNotFound)

	events, err := svc.Timeline(f.ctx, awaiting.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "changed mind", events[1].Reason)
}

func TestCancel_RestockOption(t *testing.T) {
	f := newFixture(t)
	f.product("A", 5)
	f.product("B", 5)
	f.cart("c", "A", 2, "B", 3)
	cache := &stubCache{}
	svc := f.service(WithRestockOnCancel(true), WithProductCache(cache))

	order, err := svc.Place(f.ctx, "c")
	require.NoError(t, err)
	require.NoError(t, f.store.Products().Delete(f.ctx, "B"))

	require.NoError(t, svc.Cancel(f.ctx, order.ID, ""))
	assert.Equal(t, int64(5), f.stock("A"))
	assert.Equal(t, [][]string{{"A", "B"}, {"A"}}, cache.calls())

	events, err := svc.Timeline(f.ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, domain.TimelineStockRestored, events[2].Type)
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	f.product("A", 2)
	f.product("B", 0)
	f.cart("c", "A", 2, "B", 1)
	svc := f.service()

	report, err := svc.CheckAvailability(f.ctx, "c")
	require.NoError(t, err)
	assert.False(t, report.Available)
	assert.Equal(t, []domain.InsufficientStockError{{ProductID: "B", Requested: 1, Available: 0}}, report.Shortages)
	assert.Equal(t, int64(2), f.stock("A"))

	_, err = svc.CheckAvailability(f.ctx, "missing")
	require.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestListByCartNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.product("A", 10)
	f.cart("c", "A", 1)
	clock := testNow
	svc := f.service(WithClock(func() time.Time { return clock }))

	first, err := svc.Place(f.ctx, "c")
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	f.addLines("c", "A", 2)
	second, err := svc.Place(f.ctx, "c")
	require.NoError(t, err)

	orders, err := svc.ListByCart(f.ctx, "c", 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}

func TestTimelineUnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.service().Timeline(f.ctx, "nope")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestPlace_OutboxFailureRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	f.product("A", 3)
	f.cart("c", "A", 2)
	svc := New(failingOutboxStore{f.store}, WithIDGenerator(func() string { return "o-1" }))

	_, err := svc.Place(f.ctx, "c")
	require.ErrorIs(t, err, errOutboxDown)

	assert.Equal(t, int64(3), f.stock("A"))
	cart, err := f.store.Carts().Get(f.ctx, "c")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
	_, err = f.store.Orders().Get(f.ctx, "o-1")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestMetricsRecordOutcomes(t *testing.T) {
	f := newFixture(t)
	f.product("A", 1)
	f.cart("c", "A", 1)
	f.cart("c2", "A", 1)
	reg := prometheus.NewRegistry()
	svc := f.service(WithMetrics(metrics.NewWorkflowMetricsWithRegisterer(reg)))

	order, err := svc.Place(f.ctx, "c")
	require.NoError(t, err)
	_, err = svc.Place(f.ctx, "c2")
	require.Error(t, err)
	_, err = svc.Pay(f.ctx, order.ID)
	require.NoError(t, err)
	_, err = svc.Pay(f.ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{
		"place/ok":                 1,
		"place/insufficient_stock": 1,
		"pay/ok":                   1,
		"pay/noop":                 1,
	}, operationCounts(t, reg))
}

func operationCounts(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	counts := make(map[string]float64)
	for _, family := range families {
		if family.GetName() != "storefront_order_operations_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			counts[labelValue(metric, "operation")+"/"+labelValue(metric, "result")] = metric.GetCounter().GetValue()
		}
	}
	return counts
}

func labelValue(metric *dto.Metric, name string) string {
	for _, label := range metric.GetLabel() {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}

type stubCache struct {
	mu          sync.Mutex
	invalidated [][]string
}

func (c *stubCache) Get(context.Context, string) (domain.Product, bool, error) {
	return domain.Product{}, false, nil
}

func (c *stubCache) Set(context.Context, domain.Product) error { return nil }

func (c *stubCache) Invalidate(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, append([]string(nil), ids...))
	return nil
}

func (c *stubCache) calls() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

var errOutboxDown = errors.New("outbox down")

type failingOutboxStore struct{ *memory.Store }

func (s failingOutboxStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Tx) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		return fn(ctx, failingOutboxTx{tx})
	})
}

type failingOutboxTx struct{ domain.Tx }

func (failingOutboxTx) Outbox() domain.OutboxRepository { return failingOutbox{} }

type failingOutbox struct{ domain.OutboxRepository }

func (failingOutbox) Enqueue(context.Context, domain.OutboxMessage) (domain.OutboxMessage, error) {
	return domain.OutboxMessage{}, errOutboxDown
}
