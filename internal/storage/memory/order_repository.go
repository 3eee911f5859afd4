package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// orderRepository — in-memory реализация OrderRepository.
type orderRepository struct {
	ex executor
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (r *orderRepository) Create(ctx context.Context, order domain.Order) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		if _, exists := d.orders[order.ID]; exists {
			return fmt.Errorf("order %s already exists: %w", order.ID, domain.ErrOrderVersionConflict)
		}
		// Сохраняем копию, чтобы снимок позиций не менялся извне.
		d.orders[order.ID] = order.Clone()
		j.record(func() { delete(d.orders, order.ID) })
		return nil
	})
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	var out domain.Order
	err := r.ex.view(ctx, func(d *dataset) error {
		order, ok := d.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		out = order.Clone()
		return nil
	})
	return out, err
}

func (r *orderRepository) GetForUpdate(ctx context.Context, id string) (domain.Order, error) {
	return r.Get(ctx, id)
}

// ListByCart возвращает заказы корзины, ограничивая выборку limit (если >0).
func (r *orderRepository) ListByCart(ctx context.Context, cartID string, limit int) ([]domain.Order, error) {
	var result []domain.Order
	err := r.ex.view(ctx, func(d *dataset) error {
		result = make([]domain.Order, 0)
		for _, order := range d.orders {
			if order.CartID != cartID {
				continue
			}
			result = append(result, order.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Save перезаписывает заказ, проверяя версию (optimistic locking).
func (r *orderRepository) Save(ctx context.Context, order domain.Order) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		current, ok := d.orders[order.ID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		if current.Version != order.Version {
			return domain.ErrOrderVersionConflict
		}
		next := order.Clone()
		next.Version++
		d.orders[order.ID] = next
		j.record(func() { d.orders[order.ID] = current })
		return nil
	})
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		current, ok := d.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		delete(d.orders, id)
		j.record(func() { d.orders[id] = current })
		return nil
	})
}

var _ domain.OrderRepository = (*orderRepository)(nil)
