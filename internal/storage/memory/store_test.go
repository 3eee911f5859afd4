package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func seedProduct(t *testing.T, store *Store, id, name string, qty int64) domain.Product {
	t.Helper()
	product := domain.Product{
		ID:         id,
		Name:       name,
		PriceMinor: 100,
		Quantity:   qty,
		Category:   domain.ProductCategoryOther,
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.Products().Create(context.Background(), product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestStore_WithinTxRollsBackEveryChange(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedProduct(t, store, "p-1", "apple", 5)
	if err := store.Carts().Create(ctx, domain.Cart{ID: "cart-1", Lines: []domain.CartLine{{ID: "l-1", ProductID: "p-1", Quantity: 2}}}); err != nil {
		t.Fatalf("create cart: %v", err)
	}

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		if err := tx.Products().DecrementStock(ctx, "p-1", 2); err != nil {
			return err
		}
		if err := tx.Carts().Clear(ctx, "cart-1"); err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, domain.NewOrder("o-1", "cart-1", nil, time.Now())); err != nil {
			return err
		}
		if _, err := tx.Outbox().Enqueue(ctx, domain.OutboxMessage{AggregateID: "o-1"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	stock, _ := store.Products().Stock(ctx, "p-1")
	if stock != 5 {
		t.Fatalf("stock must be restored, got %d", stock)
	}
	cart, _ := store.Carts().Get(ctx, "cart-1")
	if len(cart.Lines) != 1 {
		t.Fatalf("cart lines must be restored, got %d", len(cart.Lines))
	}
	if _, err := store.Orders().Get(ctx, "o-1"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("order must not exist, got %v", err)
	}
	stats, _ := store.Outbox().Stats(ctx)
	if stats.PendingCount != 0 {
		t.Fatalf("outbox must be empty, got %d", stats.PendingCount)
	}
}

func TestStore_WithinTxCommits(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedProduct(t, store, "p-1", "apple", 5)

	err := store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		return tx.Products().DecrementStock(ctx, "p-1", 5)
	})
	if err != nil {
		t.Fatalf("tx failed: %v", err)
	}
	stock, _ := store.Products().Stock(ctx, "p-1")
	if stock != 0 {
		t.Fatalf("expected stock 0, got %d", stock)
	}
}

func TestStore_WithinTxHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewStore().WithinTx(ctx, func(context.Context, domain.Tx) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected context.Canceled without running fn, got %v (called=%v)", err, called)
	}
}

func TestProductRepository_UniqueName(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedProduct(t, store, "p-1", "apple", 1)

	err := store.Products().Create(ctx, domain.Product{ID: "p-2", Name: "apple", Category: domain.ProductCategoryFood})
	if !errors.Is(err, domain.ErrProductExists) {
		t.Fatalf("expected ErrProductExists, got %v", err)
	}

	seedProduct(t, store, "p-3", "pear", 1)
	renamed, _ := store.Products().Get(ctx, "p-3")
	renamed.Name = "apple"
	if err := store.Products().Update(ctx, renamed); !errors.Is(err, domain.ErrProductExists) {
		t.Fatalf("expected ErrProductExists on rename, got %v", err)
	}

	renamed.Name = "quince"
	if err := store.Products().Update(ctx, renamed); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := store.Products().GetByName(ctx, "pear"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("old name must be released, got %v", err)
	}
	if got, err := store.Products().GetByName(ctx, "quince"); err != nil || got.ID != "p-3" {
		t.Fatalf("lookup by new name: %v %+v", err, got)
	}
}

func TestProductRepository_ListPaginatesAndFilters(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	for i := 0; i < 7; i++ {
		product := domain.Product{
			ID:         fmt.Sprintf("p-%d", i),
			Name:       fmt.Sprintf("item-%d", i),
			PriceMinor: int64(100 - i),
			Category:   domain.ProductCategoryFood,
		}
		if i%2 == 1 {
			product.Category = domain.ProductCategoryClothes
		}
		if err := store.Products().Create(ctx, product); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page, err := store.Products().List(ctx, domain.ProductQuery{Page: 1, PageSize: 3, SortBy: domain.ProductSortByName, Ascending: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalItems != 7 || len(page.Items) != 3 || page.Items[0].Name != "item-3" {
		t.Fatalf("unexpected page: total=%d items=%v", page.TotalItems, page.Items)
	}

	food, err := store.Products().List(ctx, domain.ProductQuery{PageSize: 10, SortBy: domain.ProductSortByPrice, Ascending: true, Category: domain.ProductCategoryFood})
	if err != nil {
		t.Fatalf("list food: %v", err)
	}
	if food.TotalItems != 4 || food.Items[0].ID != "p-6" {
		t.Fatalf("unexpected food page: %+v", food)
	}

	beyond, _ := store.Products().List(ctx, domain.ProductQuery{Page: 9, PageSize: 5})
	if len(beyond.Items) != 0 {
		t.Fatalf("page beyond range must be empty")
	}
}

func TestProductRepository_IDsByImage(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	if err := store.Images().Create(ctx, domain.Image{ID: "img-1", Content: "aW1n"}); err != nil {
		t.Fatalf("create image: %v", err)
	}
	for _, id := range []string{"p-2", "p-1", "p-3"} {
		product := seedProduct(t, store, id, "name-"+id, 1)
		if id == "p-3" {
			continue
		}
		product.ImageID = "img-1"
		if err := store.Products().Update(ctx, product); err != nil {
			t.Fatalf("attach image: %v", err)
		}
	}

	ids, err := store.Products().IDsByImage(ctx, "img-1")
	if err != nil {
		t.Fatalf("ids by image: %v", err)
	}
	if len(ids) != 2 || ids[0] != "p-1" || ids[1] != "p-2" {
		t.Fatalf("unexpected ids: %v", ids)
	}

	if err := store.Images().Delete(ctx, "img-1"); err != nil {
		t.Fatalf("delete image: %v", err)
	}
	if ids, _ := store.Products().IDsByImage(ctx, "img-1"); len(ids) != 0 {
		t.Fatalf("image references must be cleared, got %v", ids)
	}
}

func TestOrderRepository_SaveChecksVersion(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	order := domain.NewOrder("o-1", "cart-1", nil, time.Now())
	if err := store.Orders().Create(ctx, order); err != nil {
		t.Fatalf("create: %v", err)
	}

	order.Pay(time.Now())
	if err := store.Orders().Save(ctx, order); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Orders().Save(ctx, order); !domain.IsVersionConflict(err) {
		t.Fatalf("stale save must conflict, got %v", err)
	}

	stored, _ := store.Orders().Get(ctx, "o-1")
	if stored.Version != 1 || stored.Status != domain.OrderStatusDelivered {
		t.Fatalf("unexpected stored order: %+v", stored)
	}
}

func TestOrderRepository_ListByCartNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		order := domain.NewOrder(fmt.Sprintf("o-%d", i), "cart-1", nil, base.Add(time.Duration(i)*time.Second))
		if err := store.Orders().Create(ctx, order); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	_ = store.Orders().Create(ctx, domain.NewOrder("other", "cart-2", nil, base))

	orders, err := store.Orders().ListByCart(ctx, "cart-1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "o-2" || orders[1].ID != "o-1" {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestOutboxRepository_PullPendingKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Outbox()

	var ids []string
	for i := 0; i < 5; i++ {
		msg, err := repo.Enqueue(ctx, domain.OutboxMessage{AggregateType: "order", AggregateID: fmt.Sprintf("o-%d", i)})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
		ids = append(ids, msg.ID)
	}
	if err := repo.MarkSent(ctx, ids[0]); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if err := repo.MarkFailed(ctx, ids[1]); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	pending, err := repo.PullPending(ctx, 2)
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != ids[2] || pending[1].ID != ids[3] {
		t.Fatalf("unexpected pending order: %+v", pending)
	}
	if err := repo.MarkSent(ctx, "missing"); !errors.Is(err, domain.ErrOutboxPublish) {
		t.Fatalf("expected ErrOutboxPublish, got %v", err)
	}
}

func TestIdempotencyRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewIdempotencyRepository()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	if _, err := repo.CreateProcessing(ctx, "key-1", "hash-1", time.Minute); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.CreateProcessing(ctx, "key-1", "hash-1", time.Minute); !errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
	if _, err := repo.CreateProcessing(ctx, "key-1", "hash-2", time.Minute); !errors.Is(err, domain.ErrIdempotencyHashMismatch) {
		t.Fatalf("expected hash mismatch, got %v", err)
	}
	if err := repo.MarkDone(ctx, "key-1", []byte(`{"id":"o-1"}`), 201); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	record, err := repo.Get(ctx, "key-1")
	if err != nil || record.Status != domain.IdempotencyStatusDone || record.StatusCode != 201 {
		t.Fatalf("unexpected record: %+v err=%v", record, err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := repo.Get(ctx, "key-1"); !errors.Is(err, domain.ErrIdempotencyKeyNotFound) {
		t.Fatalf("expired record must disappear, got %v", err)
	}
	if _, err := repo.CreateProcessing(ctx, "key-1", "hash-2", time.Minute); err != nil {
		t.Fatalf("expired key must be reusable: %v", err)
	}
}

func TestIdempotencyRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewIdempotencyRepository()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	for _, key := range []string{"a", "b", "c"} {
		if _, err := repo.CreateProcessing(ctx, key, "hash", time.Minute); err != nil {
			t.Fatalf("create %s: %v", key, err)
		}
	}
	if _, err := repo.CreateProcessing(ctx, "fresh", "hash", time.Hour); err != nil {
		t.Fatalf("create fresh: %v", err)
	}

	before := now.Add(2 * time.Minute)
	deleted, err := repo.DeleteExpired(ctx, before, 2)
	if err != nil || deleted != 2 {
		t.Fatalf("first batch: deleted=%d err=%v", deleted, err)
	}
	deleted, err = repo.DeleteExpired(ctx, before, 2)
	if err != nil || deleted != 1 {
		t.Fatalf("second batch: deleted=%d err=%v", deleted, err)
	}
	if _, err := repo.Get(ctx, "fresh"); err != nil {
		t.Fatalf("fresh record must survive: %v", err)
	}
}

func TestTimelineRepository_ChronologicalOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Timeline()
	base := time.Now()

	_ = repo.Append(ctx, domain.TimelineEvent{OrderID: "o-1", Type: domain.TimelineOrderPaid, Occurred: base.Add(time.Second)})
	_ = repo.Append(ctx, domain.TimelineEvent{OrderID: "o-1", Type: domain.TimelineOrderPlaced, Occurred: base})

	events, err := repo.List(ctx, "o-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 || events[0].Type != domain.TimelineOrderPlaced {
		t.Fatalf("unexpected events: %+v", events)
	}
}
